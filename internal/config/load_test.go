package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/forgerun/internal/rterr"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, LocalNetworkName, cfg.DefaultNetwork)
	require.Contains(t, cfg.Networks, LocalNetworkName)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.Networks[LocalNetworkName].URL)
}

func TestLoad_ExplicitMissingPathIsAnError(t *testing.T) {
	_, err := Load(context.Background(), t.TempDir(), "/nonexistent/forgerun.hcl")
	require.Error(t, err)
	assert.True(t, rterr.IsKind(err, rterr.KindConfigInvalid))
}

func TestLoad_FullFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
		defaults {
			network = "staging"
		}

		solidity {
			version = "0.8.20"
		}

		paths {
			sources   = "src"
			artifacts = "out"
		}

		network "staging" {
			url             = "https://rpc.staging.example.com"
			chain_id        = 11155111
			gas_limit       = 30000000
			timeout_seconds = 10
			accounts        = ["0x1111111111111111111111111111111111111111"]
		}
	`)

	cfg, err := Load(context.Background(), dir, "")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.DefaultNetwork)
	assert.Equal(t, "0.8.20", cfg.Solidity.Version)
	assert.Equal(t, "src", cfg.Paths.Sources)
	assert.Equal(t, "out", cfg.Paths.Artifacts)
	assert.Equal(t, "cache", cfg.Paths.Cache, "unset paths keep their defaults")

	staging := cfg.Networks["staging"]
	require.NotNil(t, staging)
	assert.Equal(t, uint64(11155111), staging.ChainID)
	assert.Equal(t, uint64(30000000), staging.GasLimit)
	assert.Equal(t, 10, staging.TimeoutSeconds)
	assert.Len(t, staging.Accounts, 1)

	// The built-in local network survives unless redefined.
	assert.Contains(t, cfg.Networks, LocalNetworkName)
}

func TestLoad_NetworkTimeoutDefaultApplied(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
		network "fast" {
			url = "http://127.0.0.1:9545"
		}
	`)

	cfg, err := Load(context.Background(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Networks["fast"].TimeoutSeconds)
}

func TestLoad_EnvFunctionResolvesVariables(t *testing.T) {
	t.Setenv("FORGERUN_TEST_RPC_URL", "https://rpc.from-env.example.com")

	dir := t.TempDir()
	writeConfig(t, dir, `
		network "remote" {
			url = env("FORGERUN_TEST_RPC_URL")
		}
	`)

	cfg, err := Load(context.Background(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.from-env.example.com", cfg.Networks["remote"].URL)
}

func TestLoad_DotEnvLoadedBeforeResolution(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FORGERUN_DOTENV_URL=http://dotenv:8545\n"), 0600))
	writeConfig(t, dir, `
		network "dotenv" {
			url = env("FORGERUN_DOTENV_URL")
		}
	`)
	t.Cleanup(func() { os.Unsetenv("FORGERUN_DOTENV_URL") })

	cfg, err := Load(context.Background(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv:8545", cfg.Networks["dotenv"].URL)
}

func TestLoad_MalformedFileRejected(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `network "broken" {`)

	_, err := Load(context.Background(), dir, "")
	require.Error(t, err)
	assert.True(t, rterr.IsKind(err, rterr.KindConfigInvalid))
}

func TestLoad_NetworkWithoutURLRejected(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
		network "empty" {
			url = ""
		}
	`)

	_, err := Load(context.Background(), dir, "")
	require.Error(t, err)
	assert.True(t, rterr.IsKind(err, rterr.KindConfigInvalid))

	var rerr *rterr.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "empty", rerr.Detail("network"))
}
