package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/allencass/aistudio/pkg/config"
	"github.com/allencass/aistudio/pkg/style"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage aistudio configuration",
	Long: `Read and write .aistudio.yaml.

Values resolve in order: environment (AISTUDIO_TEXT_MODEL, OPENAI_API_KEY,
HF_API_KEY, ...), the config file, then built-in defaults.`,
	Example: `  aistudio config list
  aistudio config get text.model
  aistudio config set text.model claude-sonnet-4
  aistudio config set resume.section_titles experience,education,skills,projects`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return config.Keys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(key, value); err != nil {
			return err
		}
		shown := value
		if config.IsSecret(key) {
			shown = config.Mask(value)
		}
		fmt.Printf("%s Set %s = %s\n", style.OK(), key, shown)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a config value",
	Args:  cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return config.Keys(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.Get(args[0])
		if err != nil {
			return err
		}
		if config.IsSecret(args[0]) {
			value = config.Mask(value)
		}
		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all config values",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(); err != nil {
			fmt.Printf("%s %v\n", style.Warn(), err)
		}

		fmt.Printf("\n%s\n", style.C(style.Bold+style.Cyan, "aistudio config"))
		fmt.Printf("%s\n", style.C(style.Gray, config.Path()))

		all := config.All()
		section := ""
		for _, key := range listOrder(config.Keys()) {
			group, name := "keys", key
			if i := strings.IndexByte(key, '.'); i > 0 {
				group, name = key[:i], key[i+1:]
			}
			if group != section {
				fmt.Printf("\n%s\n", style.C(style.Cyan, group))
				section = group
			}
			printConfigRow(name, all[key])
		}
		fmt.Println()
		return nil
	},
}

// listOrder puts top-level keys (the API keys) before the dotted ones
func listOrder(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !strings.Contains(k, ".") {
			out = append(out, k)
		}
	}
	for _, k := range keys {
		if strings.Contains(k, ".") {
			out = append(out, k)
		}
	}
	return out
}

func printConfigRow(key, value string) {
	if value == "" {
		fmt.Printf("  %-16s %s\n", key, style.C(style.Gray, "(not set)"))
		return
	}
	fmt.Printf("  %-16s %s\n", key, style.C(style.Green, value))
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
