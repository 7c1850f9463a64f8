package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/forgerun/internal/ctxlog"
	"github.com/vk/forgerun/internal/rterr"
)

// DefaultFileName is the configuration file the loader looks for when no
// explicit path is given.
const DefaultFileName = "forgerun.hcl"

// fileModel mirrors the top-level structure of a forgerun.hcl file.
type fileModel struct {
	Defaults *defaultsBlock  `hcl:"defaults,block"`
	Solidity *solidityBlock  `hcl:"solidity,block"`
	Paths    *pathsBlock     `hcl:"paths,block"`
	Networks []*networkBlock `hcl:"network,block"`
}

type defaultsBlock struct {
	Network string `hcl:"network,optional"`
}

type solidityBlock struct {
	Version string `hcl:"version"`
}

type pathsBlock struct {
	Root      string `hcl:"root,optional"`
	Sources   string `hcl:"sources,optional"`
	Artifacts string `hcl:"artifacts,optional"`
	Cache     string `hcl:"cache,optional"`
}

type networkBlock struct {
	Name           string   `hcl:"name,label"`
	URL            string   `hcl:"url"`
	ChainID        *uint64  `hcl:"chain_id,optional"`
	GasLimit       *uint64  `hcl:"gas_limit,optional"`
	TimeoutSeconds *int     `hcl:"timeout_seconds,optional"`
	Accounts       []string `hcl:"accounts,optional"`
}

// envFunc exposes env("NAME") inside the configuration file so secrets such
// as endpoint URLs and account keys stay out of the file itself.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

// Load resolves the project configuration from the given file path. An empty
// path means "look for forgerun.hcl in dir". A missing file is not an error:
// the built-in default configuration is returned so the tool works out of
// the box against a local development node.
//
// A .env file next to the configuration is loaded into the process
// environment first, so env("NAME") references resolve against it.
func Load(ctx context.Context, dir, path string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)

	if dir == "" {
		dir = "."
	}
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, DefaultFileName)
	}

	// Best effort: a project without a .env file is perfectly fine.
	if err := godotenv.Load(filepath.Join(filepath.Dir(path), ".env")); err == nil {
		logger.Debug("Loaded .env file next to configuration.", "path", path)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			logger.Debug("No configuration file found, using built-in defaults.", "path", path)
			return Default(), nil
		}
		return nil, rterr.New(rterr.KindConfigInvalid, "cannot read configuration file %q", path).
			WithDetail("path", path).WithCause(err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, rterr.New(rterr.KindConfigInvalid, "failed to parse %q", path).
			WithDetail("path", path).WithCause(diags)
	}

	evalCtx := &hcl.EvalContext{
		Functions: map[string]function.Function{"env": envFunc},
	}

	var model fileModel
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &model); diags.HasErrors() {
		return nil, rterr.New(rterr.KindConfigInvalid, "failed to decode %q", path).
			WithDetail("path", path).WithCause(diags)
	}

	cfg, err := resolve(&model)
	if err != nil {
		return nil, err
	}
	logger.Debug("Configuration resolved.",
		"path", path,
		"networks", len(cfg.Networks),
		"default_network", cfg.DefaultNetwork,
	)
	return cfg, nil
}

// resolve overlays the decoded file onto the built-in defaults and validates
// the result.
func resolve(model *fileModel) (*Config, error) {
	cfg := Default()

	for _, nb := range model.Networks {
		if nb.URL == "" {
			return nil, rterr.New(rterr.KindConfigInvalid, "network %q has no url", nb.Name).
				WithDetail("network", nb.Name)
		}
		n := &Network{
			Name:           nb.Name,
			URL:            nb.URL,
			TimeoutSeconds: 30,
			Accounts:       nb.Accounts,
		}
		if nb.ChainID != nil {
			n.ChainID = *nb.ChainID
		}
		if nb.GasLimit != nil {
			n.GasLimit = *nb.GasLimit
		}
		if nb.TimeoutSeconds != nil {
			n.TimeoutSeconds = *nb.TimeoutSeconds
		}
		cfg.Networks[n.Name] = n
	}

	if model.Defaults != nil && model.Defaults.Network != "" {
		cfg.DefaultNetwork = model.Defaults.Network
	}
	if model.Solidity != nil {
		cfg.Solidity.Version = model.Solidity.Version
	}
	if model.Paths != nil {
		if model.Paths.Root != "" {
			cfg.Paths.Root = model.Paths.Root
		}
		if model.Paths.Sources != "" {
			cfg.Paths.Sources = model.Paths.Sources
		}
		if model.Paths.Artifacts != "" {
			cfg.Paths.Artifacts = model.Paths.Artifacts
		}
		if model.Paths.Cache != "" {
			cfg.Paths.Cache = model.Paths.Cache
		}
	}

	if cfg.Solidity.Version == "" {
		return nil, rterr.New(rterr.KindConfigInvalid, "solidity block declares an empty version")
	}
	return cfg, nil
}
