package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

type testGrammar struct {
	Verbose bool `short:"V" help:"Verbose output"`

	Process struct {
		Kernel string   `default:"dual" help:"Kernel type"`
		Files  []string `arg:"" help:"Files to process"`
	} `cmd:"" help:"Process sample files"`

	Info struct{} `cmd:"" help:"Show CPU features"`
}

func parseForHelp(t *testing.T, args ...string) (*kong.Context, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	parser, err := kong.New(&testGrammar{},
		kong.Name("agckit"),
		kong.Description("Automatic gain control toolkit"),
		kong.Writers(&out, &out),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return ctx, &out
}

func TestStyledHelpPrinterCommand(t *testing.T) {
	ctx, out := parseForHelp(t, "process", "a.wav")

	printer := StyledHelpPrinter(kong.HelpOptions{Compact: true})
	if err := printer(kong.HelpOptions{}, ctx); err != nil {
		t.Fatalf("printer: %v", err)
	}

	help := out.String()
	for _, want := range []string{
		"Process sample files",
		"agckit process [flags]",
		"Files to process",
		"--kernel=KERNEL",
		"(default: dual)",
		"-V, --verbose",
		"-h, --help",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
	if strings.Contains(help, "Commands:") {
		t.Errorf("leaf command should not list commands:\n%s", help)
	}
}

func TestGetCommands(t *testing.T) {
	ctx, _ := parseForHelp(t, "info")

	cmds := getCommands(ctx.Model.Node)
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[0].term != "process" || cmds[1].term != "info" {
		t.Errorf("commands = %+v", cmds)
	}
	if !strings.Contains(usageLine(ctx.Model.Node), "<command>") {
		t.Errorf("root usage should mention <command>: %q", usageLine(ctx.Model.Node))
	}
}
