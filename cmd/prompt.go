package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/allencass/aistudio/pkg/config"
	"github.com/allencass/aistudio/pkg/style"
	"github.com/allencass/aistudio/pkg/workflow"
)

var promptReset bool

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Manage the resume rewrite prompt",
	Long: `The rewrite prompt is a Go text/template with {{.ResumeContent}} and
{{.JobDescription}}. Copy it into the project with "prompt init", edit it,
and point text.prompt_path at it if you keep it elsewhere.`,
}

var promptInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default prompt for editing",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := promptPath()
		if err != nil {
			return err
		}

		if promptReset {
			if err := workflow.Reset(path); err != nil {
				return err
			}
			fmt.Printf("%s Reset %s\n", style.OK(), style.C(style.Cyan, path))
			return nil
		}

		wrote, err := workflow.Init(path)
		if err != nil {
			return err
		}
		if !wrote {
			fmt.Printf("%s %s already exists (use --reset to overwrite)\n", style.Warn(), path)
			return nil
		}
		fmt.Printf("%s Created %s\n", style.OK(), style.C(style.Cyan, path))
		return nil
	},
}

var promptShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the prompt in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		p, err := workflow.Load(cfg.Text.PromptPath)
		if err != nil {
			return err
		}

		text := workflow.DefaultOptimize
		source := "built-in"
		if p.Source != "" {
			b, err := os.ReadFile(p.Source)
			if err != nil {
				return err
			}
			text, source = string(b), p.Source
		}

		fmt.Printf("%s %s\n\n", style.C(style.Gray, "#"), style.C(style.Gray, source))
		fmt.Printf("%s\n%s\n\n", style.B("system:"), p.System)
		fmt.Printf("%s\n%s", style.B("template:"), text)
		return nil
	},
}

func promptPath() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if cfg.Text.PromptPath != "" {
		return cfg.Text.PromptPath, nil
	}
	return workflow.OptimizePath, nil
}

func init() {
	promptInitCmd.Flags().BoolVar(&promptReset, "reset", false, "Overwrite an existing prompt with the default")
	promptCmd.AddCommand(promptInitCmd)
	promptCmd.AddCommand(promptShowCmd)
	rootCmd.AddCommand(promptCmd)
}
