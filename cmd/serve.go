package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/allencass/aistudio/pkg/config"
	"github.com/allencass/aistudio/pkg/imagegen"
	clog "github.com/allencass/aistudio/pkg/log"
	"github.com/allencass/aistudio/pkg/optimizer"
	"github.com/allencass/aistudio/pkg/signal"
	"github.com/allencass/aistudio/pkg/style"
	"github.com/allencass/aistudio/pkg/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI",
	Long: `Serve the resume optimizer at / and the text-to-image generator at
/image. The server runs until interrupted.`,
	Example: `  aistudio serve
  aistudio serve --addr 127.0.0.1:8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	serveLogLevel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	svc, err := optimizer.New(cfg, userAgent())
	if err != nil {
		return err
	}

	srv, err := web.New(web.Config{
		Addr:           cfg.Server.Addr,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		Version:        Version,
	}, svc, imageFactory(cfg))
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("%s Serving on %s\n", style.Step(), style.C(style.Cyan, displayAddr(cfg.Server.Addr)))
		if svc.NeedsAPIKey() {
			fmt.Printf("%s No %s key configured; the form will ask for one\n", style.Warn(), svc.Provider())
		}
	}

	ctx, cancel := signal.NotifyContext()
	defer cancel()
	return srv.Start(ctx)
}

// serveLogLevel logs requests at Info unless -q or -v chose a level.
func serveLogLevel() {
	if !quiet && !verbose {
		clog.SetLevel(slog.LevelInfo)
	}
}

// imageFactory builds one image client per request so a missing key is
// reported on the page rather than at startup.
func imageFactory(cfg *config.Config) web.ImageFactory {
	icfg := imagegen.ConfigFrom(cfg)
	return func() (web.ImageGenerator, error) {
		c, err := imagegen.NewClient(icfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func userAgent() string {
	return "aistudio/" + Version
}
