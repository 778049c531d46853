package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FD7FF")).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#5FD7FF")).
				MarginTop(1)

	helpCommandStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#AF87FF")).
				Bold(true)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// StyledHelpPrinter creates a custom help printer with Lipgloss styling.
// It describes the selected command, or the application when none is
// selected.
func StyledHelpPrinter(options kong.HelpOptions) func(options kong.HelpOptions, ctx *kong.Context) error {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		node := ctx.Model.Node
		if selected := ctx.Selected(); selected != nil {
			node = selected
		}

		sb.WriteString(helpTitleStyle.Render("Agckit 📶"))
		sb.WriteString("\n")
		desc := ctx.Model.Help
		if node != ctx.Model.Node && node.Help != "" {
			desc = node.Help
		}
		sb.WriteString(helpDescStyle.Render(desc))
		sb.WriteString("\n")

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(usageLine(node))
		sb.WriteString("\n")

		writeEntries(&sb, "Commands:", helpCommandStyle, getCommands(node))
		writeEntries(&sb, "Arguments:", helpArgStyle, getArguments(node))
		writeEntries(&sb, "Flags:", helpFlagStyle, getFlags(node))

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

// entry is one line of a help section: a styled term, its help text and
// an optional default.
type entry struct {
	term       string
	help       string
	defaultVal string
}

// writeEntries writes a titled section with terms padded to a common
// width. Empty sections are skipped.
func writeEntries(sb *strings.Builder, title string, style lipgloss.Style, entries []entry) {
	if len(entries) == 0 {
		return
	}

	width := 0
	for _, e := range entries {
		width = max(width, len(e.term))
	}

	sb.WriteString("\n")
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString("  ")
		sb.WriteString(style.Render(fmt.Sprintf("%-*s", width, e.term)))
		if e.help != "" {
			sb.WriteString("  " + e.help)
		}
		if e.defaultVal != "" {
			sb.WriteString(" " + helpDefaultStyle.Render("(default: "+e.defaultVal+")"))
		}
		sb.WriteString("\n")
	}
}

// usageLine renders "agckit process [flags] <files> ..." for a node.
func usageLine(node *kong.Node) string {
	parts := []string{node.FullPath()}
	if len(getCommands(node)) > 0 {
		parts = append(parts, "<command>")
	}
	parts = append(parts, "[flags]")
	for _, arg := range node.Positional {
		parts = append(parts, arg.Summary())
	}
	return strings.Join(parts, " ")
}

func getCommands(node *kong.Node) []entry {
	var cmds []entry
	for _, child := range node.Children {
		if child.Hidden || child.Type != kong.CommandNode {
			continue
		}
		cmds = append(cmds, entry{term: child.Name, help: child.Help})
	}
	return cmds
}

func getArguments(node *kong.Node) []entry {
	var args []entry
	for _, arg := range node.Positional {
		args = append(args, entry{term: arg.Summary(), help: arg.Help})
	}
	return args
}

// getFlags lists the node's flags followed by those inherited from its
// parents.
func getFlags(node *kong.Node) []entry {
	flags := []entry{{
		term:  "-h, --help",
		help:  "Show context-sensitive help.",
	}}

	for n := node; n != nil; n = n.Parent {
		for _, f := range n.Flags {
			if f.Name == "help" || f.Hidden {
				continue
			}

			term := "--" + f.Name
			if f.Short != 0 {
				term = fmt.Sprintf("-%c, %s", f.Short, term)
			}

			if !f.IsBool() {
				placeholder := f.PlaceHolder
				if placeholder == "" {
					placeholder = f.Name
				}
				term += "=" + strings.ToUpper(placeholder)
			}

			defaultVal := ""
			if f.HasDefault && !f.IsBool() {
				defaultVal = f.Default
			}

			flags = append(flags, entry{term: term, help: f.Help, defaultVal: defaultVal})
		}
	}

	return flags
}
