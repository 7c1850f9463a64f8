// Package cli parses the forgerun command line into an app configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/gookit/color"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/forgerun/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// envSettings are the FORGERUN_* environment defaults. Flags win over them.
type envSettings struct {
	Network    string `env:"FORGERUN_NETWORK"`
	ConfigPath string `env:"FORGERUN_CONFIG"`
	LogLevel   string `env:"FORGERUN_LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"FORGERUN_LOG_FORMAT" envDefault:"text"`
}

// numberLiteral matches bare decimal literals. Hex-looking strings such as
// addresses deliberately stay strings.
var numberLiteral = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	defaults := envSettings{}
	if err := env.Parse(&defaults); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	flagSet := flag.NewFlagSet("forgerun", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprintf(output, `
%s - a pluggable task runner for JSON-RPC networks.

Usage:
  forgerun [options] TASK [param=value ...] [positional ...]

Arguments:
  TASK
    Name of a registered task. Arguments given as name=value bind to named
    parameters; bare values bind to positional parameters in order.

Options:
`, color.Bold.Sprint("forgerun"))
		flagSet.PrintDefaults()
	}

	networkFlag := flagSet.String("network", defaults.Network, "Network to run against. Defaults to the configuration's default network.")
	configFlag := flagSet.String("config", defaults.ConfigPath, "Path to the forgerun.hcl configuration file.")
	projectFlag := flagSet.String("project-dir", ".", "Project root directory.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	taskName := flagSet.Arg(0)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	named, positional, err := parseTaskArgs(flagSet.Args()[1:])
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	config, err := app.NewConfig(app.Config{
		ProjectDir:     *projectFlag,
		ConfigPath:     *configFlag,
		Network:        *networkFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
		TaskName:       taskName,
		TaskArgs:       named,
		PositionalArgs: positional,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}

// parseTaskArgs splits the tokens after the task name into named name=value
// arguments and bare positional values.
func parseTaskArgs(tokens []string) (map[string]cty.Value, []cty.Value, error) {
	named := make(map[string]cty.Value)
	var positional []cty.Value

	for _, tok := range tokens {
		name, raw, isNamed := strings.Cut(tok, "=")
		if !isNamed {
			positional = append(positional, sniffValue(tok))
			continue
		}
		if name == "" {
			return nil, nil, fmt.Errorf("malformed task argument %q: empty parameter name", tok)
		}
		if _, dup := named[name]; dup {
			return nil, nil, fmt.Errorf("task argument %q supplied more than once", name)
		}
		named[name] = sniffValue(raw)
	}
	return named, positional, nil
}

// sniffValue turns a command-line token into a cty value: bool and decimal
// number literals become typed values, everything else stays a string. The
// argument resolver converts further against the declared parameter type.
func sniffValue(raw string) cty.Value {
	switch raw {
	case "true":
		return cty.True
	case "false":
		return cty.False
	}
	if numberLiteral.MatchString(raw) {
		if v, err := cty.ParseNumberVal(raw); err == nil {
			return v
		}
	}
	return cty.StringVal(raw)
}
