package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand_RequiresPolicy(t *testing.T) {
	cmd := newServeCommand()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--policy is required")
}

func TestServeCommand_FlagsParsed(t *testing.T) {
	cmd := newServeCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"--port", "9000",
		"-p", "policy.yaml",
		"--db", "custom.db",
		"--retention-days", "30",
		"--max-records", "1000",
		"--prune-schedule", "@daily",
	}))

	port, err := cmd.Flags().GetInt("port")
	require.NoError(t, err)
	assert.Equal(t, 9000, port)

	db, err := cmd.Flags().GetString("db")
	require.NoError(t, err)
	assert.Equal(t, "custom.db", db)

	days, err := cmd.Flags().GetInt("retention-days")
	require.NoError(t, err)
	assert.Equal(t, 30, days)
}

func TestServeCommand_DefaultPort(t *testing.T) {
	cmd := newServeCommand()
	require.NoError(t, cmd.ParseFlags(nil))

	port, err := cmd.Flags().GetInt("port")
	require.NoError(t, err)
	assert.Equal(t, 8315, port)
}

func TestRootCommand_HasServeSubcommand(t *testing.T) {
	root := newRootCommand()
	found := false
	for _, c := range root.Commands() {
		if c.Name() == "serve" {
			found = true
			break
		}
	}
	assert.True(t, found, "root command should have 'serve' subcommand")
}
