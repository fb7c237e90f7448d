package main

import (
	"testing"

	"github.com/netcfgkit/iossection/pkg/intfname"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIntf(t *testing.T) {
	tests := []struct {
		name    string
		convert func(string) (intfname.Interface, error)
		input   string
		format  string
		want    string
	}{
		{"parse", intfname.Parse, "gi1/0/10", "text", "GigabitEthernet1/0/10\n"},
		{"shorten", intfname.Shorten, "TenGigabitEthernet1/1/4", "text", "Te1/1/4\n"},
		{"expand", intfname.Expand, "Po10", "text", "Port-channel10\n"},
		{"json", intfname.Shorten, "Loopback0", "json", `{"name":"Lo","number":"0"}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intfFormat = tt.format
			cmd, out, _ := newTestCmd()
			require.NoError(t, runIntf(cmd, tt.input, tt.convert))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunIntf_Errors(t *testing.T) {
	intfFormat = "text"

	cmd, _, _ := newTestCmd()
	err := runIntf(cmd, "xx1/0/1", intfname.Parse)
	assert.ErrorIs(t, err, intfname.ErrUnknownCategory)

	err = runIntf(cmd, "GigabitEthernet", intfname.Expand)
	assert.ErrorIs(t, err, intfname.ErrMissingNumber)

	intfFormat = "yaml"
	err = runIntf(cmd, "Gi1/0/1", intfname.Shorten)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestIntfCommand_Subcommands(t *testing.T) {
	for _, name := range []string{"parse", "shorten", "expand"} {
		cmd, _, err := rootCmd.Find([]string{"intf", name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
