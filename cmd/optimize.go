package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/allencass/aistudio/pkg/ai"
	"github.com/allencass/aistudio/pkg/config"
	"github.com/allencass/aistudio/pkg/optimizer"
	"github.com/allencass/aistudio/pkg/signal"
	"github.com/allencass/aistudio/pkg/style"
	"github.com/allencass/aistudio/pkg/utils"
)

var (
	optJobFile string
	optJobURL  string
	optOutput  string
	optPreview bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize <resume>",
	Short: "Tailor a resume to a job description",
	Long: `Rewrite the body of a .docx (or .pdf) resume for a job description and
save it as a new Word document. The contact header is carried over
unchanged; only the content below it is sent to the model.

When no API key is configured for the provider you are asked for one.
It is used for this run only and never saved.`,
	Example: `  aistudio optimize resume.docx --job posting.txt
  aistudio optimize resume.docx --job-url https://boards.greenhouse.io/acme/jobs/123
  pbpaste | aistudio optimize resume.docx --job - -o tailored.docx`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optJobFile, "job", "j", "", "File with the job description (- for stdin)")
	optimizeCmd.Flags().StringVar(&optJobURL, "job-url", "", "URL of the job posting")
	optimizeCmd.Flags().StringVarP(&optOutput, "output", "o", optimizer.OutputFileName, "Where to write the optimized resume")
	optimizeCmd.Flags().BoolVar(&optPreview, "preview", false, "Print the optimized text")
	optimizeCmd.MarkFlagsMutuallyExclusive("job", "job-url")
	optimizeCmd.MarkFlagsOneRequired("job", "job-url")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	svc, err := optimizer.New(cfg, userAgent())
	if err != nil {
		return err
	}

	resumePath := args[0]
	data, err := os.ReadFile(resumePath)
	if err != nil {
		return fmt.Errorf("reading resume: %w", err)
	}

	jd, err := readJobDescription(cmd.InOrStdin())
	if err != nil {
		return err
	}

	var apiKey string
	if svc.NeedsAPIKey() {
		apiKey, err = promptAPIKey(cmd.InOrStdin(), cmd.ErrOrStderr(), svc.Provider())
		if err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext()
	defer cancel()

	var spin *style.Spinner
	if !quiet {
		spin = style.NewSpinner(os.Stderr, "Optimizing your resume...").Start()
	}
	res, err := svc.Optimize(ctx, optimizer.Input{
		FileName:       filepath.Base(resumePath),
		File:           data,
		JobDescription: jd,
		APIKey:         apiKey,
	})
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	if err := utils.WriteFile(optOutput, res.DOCX); err != nil {
		return fmt.Errorf("writing %s: %w", optOutput, err)
	}

	if optPreview {
		fmt.Println(res.Optimized)
		fmt.Println()
	}
	if !quiet {
		fmt.Printf("%s Resume optimized successfully!\n", style.OK())
		fmt.Printf("  %s %d header lines kept\n", style.C(style.Gray, "header"), len(res.Header))
		fmt.Printf("  %s %s\n", style.C(style.Gray, "saved "), style.C(style.Cyan, optOutput))
	}
	return nil
}

func readJobDescription(stdin io.Reader) (string, error) {
	if optJobURL != "" {
		return optJobURL, nil
	}
	if optJobFile == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading job description from stdin: %w", err)
		}
		return string(b), nil
	}
	s, err := utils.ReadFile(optJobFile)
	if err != nil {
		return "", fmt.Errorf("reading job description: %w", err)
	}
	return s, nil
}

// promptAPIKey asks for a key on the terminal. An empty answer is
// returned as-is and reported as a missing credential by the pipeline.
func promptAPIKey(in io.Reader, out io.Writer, provider string) (string, error) {
	if optJobFile == "-" {
		// stdin already holds the job description
		return "", nil
	}
	fmt.Fprintf(out, "%s Enter your %s: ", style.C(style.Green, "?"), ai.CredentialEnv(provider))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
