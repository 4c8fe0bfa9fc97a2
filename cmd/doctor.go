package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/allencass/aistudio/pkg/ai"
	"github.com/allencass/aistudio/pkg/config"
	"github.com/allencass/aistudio/pkg/style"
	"github.com/allencass/aistudio/pkg/utils"
	"github.com/allencass/aistudio/pkg/workflow"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and API credentials",
	Long: `Verify that the configuration loads, the text model resolves to a
provider, the rewrite prompt parses, and the API keys are present.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("%s Checking configuration\n\n", style.Step())

	allGood := true
	fail := func(format string, a ...any) {
		fmt.Printf("%s %s\n", style.Fail(), fmt.Sprintf(format, a...))
		allGood = false
	}
	ok := func(format string, a ...any) {
		fmt.Printf("%s %s\n", style.OK(), fmt.Sprintf(format, a...))
	}

	if utils.FileExists(config.Path()) {
		ok("config file %s", config.Path())
	} else {
		fmt.Printf("%s no %s, using defaults and environment\n", style.C(style.Gray, "○"), config.Path())
	}

	cfg, err := config.Load()
	if err != nil {
		fail("%v", err)
		fmt.Println()
		return fmt.Errorf("setup issues detected")
	}
	ok("config valid")

	settings := ai.SettingsFromConfig(cfg)
	provider, key, err := settings.Credential()
	if err != nil {
		fail("%v", err)
	} else {
		ok("text model %s via %s", style.C(style.Cyan, cfg.Text.Model), provider)
	}

	if p, err := workflow.Load(cfg.Text.PromptPath); err != nil {
		fail("%v", err)
	} else if p.Source != "" {
		ok("prompt %s", p.Source)
	} else {
		ok("prompt built-in")
	}

	fmt.Println()
	fmt.Printf("%s Checking API credentials\n\n", style.Step())

	if provider != "" {
		env := ai.CredentialEnv(provider)
		if key != "" {
			ok("%s set", env)
		} else {
			fmt.Printf("%s %s not set (you will be asked for it)\n", style.Warn(), env)
		}
	}
	if cfg.HFKey != "" {
		ok("%s set", config.EnvName("hf_api_key"))
	} else {
		fmt.Printf("%s %s not set (required for image generation)\n", style.Warn(), config.EnvName("hf_api_key"))
	}

	fmt.Println()

	if !allGood {
		return fmt.Errorf("setup issues detected")
	}
	fmt.Printf("%s Setup OK\n", style.OK())
	return nil
}
