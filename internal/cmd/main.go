package cmd

import (
	"os"

	"github.com/mitchellh/cli"
)

// Version is the CLI version reported by "credvault version" and -v.
const Version = "0.1.0"

// Main runs the credvault CLI and returns the process exit code.
func Main(args []string) int {
	if len(args) == 1 && (args[0] == "-v" || args[0] == "-version" || args[0] == "--version") {
		args = []string{"version"}
	}

	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	c := cli.NewCLI("credvault", Version)
	c.Args = args
	c.Commands = map[string]cli.CommandFactory{
		"store": func() (cli.Command, error) {
			return &StoreCommand{baseCommand: baseCommand{UI: ui}}, nil
		},
		"get": func() (cli.Command, error) {
			return &GetCommand{baseCommand: baseCommand{UI: ui}}, nil
		},
		"list": func() (cli.Command, error) {
			return &ListCommand{baseCommand: baseCommand{UI: ui}}, nil
		},
		"rotate": func() (cli.Command, error) {
			return &RotateCommand{baseCommand: baseCommand{UI: ui}}, nil
		},
		"update": func() (cli.Command, error) {
			return &UpdateCommand{baseCommand: baseCommand{UI: ui}}, nil
		},
		"delete": func() (cli.Command, error) {
			return &DeleteCommand{baseCommand: baseCommand{UI: ui}}, nil
		},
		"audit list": func() (cli.Command, error) {
			return &AuditListCommand{baseCommand: baseCommand{UI: ui}}, nil
		},
		"audit verify": func() (cli.Command, error) {
			return &AuditVerifyCommand{baseCommand: baseCommand{UI: ui}}, nil
		},
		"audit purge": func() (cli.Command, error) {
			return &AuditPurgeCommand{baseCommand: baseCommand{UI: ui}}, nil
		},
		"version": func() (cli.Command, error) {
			return &VersionCommand{UI: ui}, nil
		},
	}

	exitCode, err := c.Run()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}
	return exitCode
}

// VersionCommand prints the CLI version.
type VersionCommand struct {
	UI cli.Ui
}

func (c *VersionCommand) Synopsis() string { return "Prints the credvault version" }

func (c *VersionCommand) Help() string { return "Usage: credvault version" }

func (c *VersionCommand) Run(_ []string) int {
	c.UI.Output("credvault " + Version)
	return 0
}
