// Package style provides terminal styling for the aistudio CLI: colors,
// status marks, a progress spinner and the help layout.
package style

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[0;31m"
	Green   = "\033[0;32m"
	Yellow  = "\033[1;33m"
	Blue    = "\033[0;34m"
	Magenta = "\033[0;35m"
	Cyan    = "\033[0;36m"
	Gray    = "\033[90m"
)

// NoColor disables colors (non-TTY, NO_COLOR or AISTUDIO_NO_COLOR)
var NoColor = false

func init() {
	if os.Getenv("AISTUDIO_NO_COLOR") != "" || os.Getenv("NO_COLOR") != "" {
		NoColor = true
	}
	if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		NoColor = true
	}
}

// C wraps text with color, respecting NoColor
func C(color, text string) string {
	if NoColor {
		return text
	}
	return color + text + Reset
}

// B makes text bold
func B(text string) string {
	return C(Bold, text)
}

// Status marks used by doctor and the command summaries.
func OK() string   { return C(Green, "✓") }
func Fail() string { return C(Red, "✗") }
func Warn() string { return C(Yellow, "⚠") }
func Step() string { return C(Blue, "→") }

// Success formats a "label: " prefix in green
func Success(label string) string {
	return C(Green, label+":") + " "
}

// SetupHelp installs the sectioned help and usage layout on cmd
func SetupHelp(cmd *cobra.Command) {
	cobra.AddTemplateFunc("heading", heading)
	cobra.AddTemplateFunc("command", command)
	cobra.AddTemplateFunc("rpadStyled", rpadStyled)

	cmd.SetUsageTemplate(usageTemplate)
	cmd.SetHelpTemplate(helpTemplate)
}

func heading(s string) string {
	return C(Bold+Magenta, s)
}

func command(s string) string {
	return C(Cyan, s)
}

// rpadStyled pads by the raw width so escape codes don't skew columns
func rpadStyled(s string, padding int) string {
	out := command(s)
	if n := padding - len(s); n > 0 {
		out += strings.Repeat(" ", n)
	}
	return out
}

const commandList = `{{range .Commands}}{{if .IsAvailableCommand}}
  {{rpadStyled .Name .NamePadding }}  {{.Short}}{{end}}{{end}}`

const usageTemplate = `{{ heading "Usage:" }}
  {{ command .UseLine }}{{if .HasAvailableSubCommands}} [command]{{end}}
{{if .HasAvailableSubCommands}}
{{ heading "Commands:" }}` + commandList + `

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

const helpTemplate = `{{with or .Long .Short}}{{.}}

{{end}}{{ heading "Usage:" }}
  {{ command .UseLine }}{{if .HasAvailableSubCommands}} [command]{{end}}
{{if gt (len .Aliases) 0}}
{{ heading "Aliases:" }}
  {{.NameAndAliases}}
{{end}}{{if .HasExample}}
{{ heading "Examples:" }}
{{.Example}}
{{end}}{{if .HasAvailableSubCommands}}
{{ heading "Commands:" }}` + commandList + `
{{end}}{{if .HasAvailableLocalFlags}}
{{ heading "Options:" }}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableInheritedFlags}}
{{ heading "Global Options:" }}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableSubCommands}}
Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`
