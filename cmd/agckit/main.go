package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/linuxmatters/agckit/internal/cli"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version versionFlag     `short:"v" help:"Show version information"`
	Config  kong.ConfigFlag `short:"c" type:"path" help:"Load flag defaults from a JSON file"`

	Process  processCmd  `cmd:"" help:"Run a gain kernel over sample files"`
	Generate generateCmd `cmd:"" help:"Write a synthetic test signal"`
	Info     infoCmd     `cmd:"" help:"Show vector math dispatch, CPU features and mains frequency"`
}

// versionFlag prints the styled version and exits before any command is
// required.
type versionFlag bool

func (v versionFlag) BeforeReset(app *kong.Kong) error {
	cli.PrintVersion(version)
	app.Exit(0)
	return nil
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("agckit"),
		kong.Description("Automatic gain control kernels for real and I/Q sample streams"),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if err := ctx.Run(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

// newDebugLog opens agckit-debug.log and returns a printf-style logger
// for it along with its closer.
func newDebugLog() (func(format string, args ...interface{}), func()) {
	debugLog, _ := os.Create("agckit-debug.log")
	log := func(format string, args ...interface{}) {
		if debugLog != nil {
			fmt.Fprintf(debugLog, format+"\n", args...)
		}
	}
	return log, func() {
		if debugLog != nil {
			debugLog.Close()
		}
	}
}
