package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"session", "ingest", "locations", "workers", "records", "enriched", "calculate", "pivot", "vouchers", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "gajian-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestSessionCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range sessionCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"new", "list", "show", "drop"} {
		assert.True(t, names[name], "session should have subcommand %q", name)
	}
}

func TestSessionListCommand_Flags(t *testing.T) {
	flag := sessionListCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "50", flag.DefValue)
}

func TestStepCommands_SessionFlag(t *testing.T) {
	for _, c := range []string{"ingest", "locations", "workers", "records", "enriched", "calculate", "pivot"} {
		cmd, _, err := rootCmd.Find([]string{c})
		require.NoError(t, err)
		flag := cmd.PersistentFlags().Lookup("session")
		require.NotNil(t, flag, "%s should have --session", c)
		assert.Equal(t, "s", flag.Shorthand)
	}
}

func TestVouchersCommand_Flags(t *testing.T) {
	for _, name := range []string{"session", "date", "place", "license", "profile", "out-dir"} {
		assert.NotNil(t, vouchersCmd.Flags().Lookup(name), "vouchers should have --%s", name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}
