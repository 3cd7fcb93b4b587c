package cmd

import (
	"strings"
	"testing"

	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
)

func TestVersionCommand(t *testing.T) {
	ui := cli.NewMockUi()
	c := &VersionCommand{UI: ui}
	code := c.Run(nil)
	assert.Equal(t, 0, code)
	assert.Contains(t, ui.OutputWriter.String(), Version)
}

func TestMain_Version(t *testing.T) {
	assert.Equal(t, 0, Main([]string{"-v"}))
	assert.Equal(t, 0, Main([]string{"version"}))
}

func TestCommandHelp(t *testing.T) {
	ui := cli.NewMockUi()
	for _, c := range []cli.Command{
		&StoreCommand{baseCommand: baseCommand{UI: ui}},
		&GetCommand{baseCommand: baseCommand{UI: ui}},
		&ListCommand{baseCommand: baseCommand{UI: ui}},
		&RotateCommand{baseCommand: baseCommand{UI: ui}},
		&UpdateCommand{baseCommand: baseCommand{UI: ui}},
		&DeleteCommand{baseCommand: baseCommand{UI: ui}},
		&AuditListCommand{baseCommand: baseCommand{UI: ui}},
		&AuditVerifyCommand{baseCommand: baseCommand{UI: ui}},
		&AuditPurgeCommand{baseCommand: baseCommand{UI: ui}},
	} {
		assert.NotEmpty(t, c.Synopsis())
		assert.True(t, strings.HasPrefix(c.Help(), "Usage: credvault"))
	}
}
