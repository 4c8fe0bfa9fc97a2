package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	clog "github.com/allencass/aistudio/pkg/log"
	"github.com/allencass/aistudio/pkg/style"
)

var (
	quiet   bool
	verbose bool
	jsonLog bool
)

var rootCmd = &cobra.Command{
	Use:   "aistudio",
	Short: "Resume optimizer and text-to-image tools powered by AI",
	Long: `aistudio tailors a Word resume to a job description and generates
images from text prompts.

Run the browser UI with "aistudio serve", or use the optimize and image
commands directly from the terminal.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		clog.SetJSON(jsonLog)
		clog.SetVerbose(verbose)
		clog.SetQuiet(quiet)
	},
}

func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", style.Fail(), err)
		os.Exit(1)
	}
}

func init() {
	style.SetupHelp(rootCmd)

	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Write logs as JSON lines")
}
