package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/allencass/aistudio/pkg/config"
	"github.com/allencass/aistudio/pkg/imagegen"
	"github.com/allencass/aistudio/pkg/signal"
	"github.com/allencass/aistudio/pkg/style"
	"github.com/allencass/aistudio/pkg/utils"
)

var (
	imgOutput    string
	imgNoClobber bool
)

var imageCmd = &cobra.Command{
	Use:   "image [prompt]",
	Short: "Generate an image from a text prompt",
	Long: `Generate an image with the configured Hugging Face model and save it
as PNG. Requires HF_API_KEY.`,
	Example: `  aistudio image
  aistudio image "A lighthouse at dusk, oil painting" -o lighthouse.png`,
	RunE: runImage,
}

func init() {
	imageCmd.Flags().StringVarP(&imgOutput, "output", "o", imagegen.BatchFileName, "Where to write the PNG")
	imageCmd.Flags().BoolVar(&imgNoClobber, "no-clobber", false, "Pick a new name instead of overwriting")
	rootCmd.AddCommand(imageCmd)
}

func runImage(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	prompt := imagegen.DefaultPrompt
	if len(args) > 0 {
		prompt = strings.Join(args, " ")
	}

	client, err := imagegen.NewClient(imagegen.ConfigFrom(cfg))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext()
	defer cancel()

	var spin *style.Spinner
	if !quiet {
		spin = style.NewSpinner(os.Stderr, fmt.Sprintf("Generating %q...", prompt)).Start()
	}
	png, err := client.GeneratePNG(ctx, prompt)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	out := imgOutput
	if imgNoClobber {
		out = utils.FreePath(out)
	}
	if err := utils.WriteFile(out, png); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	if !quiet {
		fmt.Printf("%s Image saved to %s\n", style.OK(), style.C(style.Cyan, out))
	}
	return nil
}
