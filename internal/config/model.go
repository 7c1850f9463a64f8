// Package config loads and resolves the forgerun project configuration.
//
// A project is described by a single forgerun.hcl file holding the network
// table, the default network name, the solidity toolchain version and the
// project path layout. The loader resolves that file into the immutable
// Config consumed by the runtime environment.
package config

// Config is the fully resolved project configuration. It is treated as
// immutable once returned by Load.
type Config struct {
	// DefaultNetwork names the network used when a run supplies no
	// override.
	DefaultNetwork string

	// Networks is the network table, keyed by network name.
	Networks map[string]*Network

	Solidity Solidity
	Paths    Paths
}

// Network describes a single JSON-RPC endpoint the tool can talk to.
type Network struct {
	Name           string
	URL            string
	ChainID        uint64
	GasLimit       uint64
	TimeoutSeconds int

	// Accounts optionally lists account addresses usable on this network.
	Accounts []string
}

// Solidity holds compiler toolchain settings forwarded to the provider
// factory. The runtime itself never compiles anything.
type Solidity struct {
	Version string
}

// Paths holds the project directory layout.
type Paths struct {
	Root      string
	Sources   string
	Artifacts string
	Cache     string
}

// LocalNetworkName is the name of the built-in development network that is
// always present in the network table unless the project redefines it.
const LocalNetworkName = "local"

// Default returns the configuration used when no forgerun.hcl exists: a
// single built-in local network and conventional paths.
func Default() *Config {
	return &Config{
		DefaultNetwork: LocalNetworkName,
		Networks: map[string]*Network{
			LocalNetworkName: {
				Name:           LocalNetworkName,
				URL:            "http://127.0.0.1:8545",
				ChainID:        31337,
				TimeoutSeconds: 30,
			},
		},
		Solidity: Solidity{Version: "0.8.24"},
		Paths: Paths{
			Root:      ".",
			Sources:   "contracts",
			Artifacts: "artifacts",
			Cache:     "cache",
		},
	}
}
