package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/overlayd/overlayd/internal/config"
	"github.com/overlayd/overlayd/internal/fetch"
	"github.com/overlayd/overlayd/internal/logging"
	"github.com/overlayd/overlayd/internal/processor"
	"github.com/overlayd/overlayd/internal/server"
)

var (
	rootCmd = &cobra.Command{
		Use:   "overlayd",
		Short: "A video text-overlay service",
		Long: `overlayd renders styled text onto every frame of a video.

It exposes a single HTTP endpoint that downloads a source video, draws the
requested prompt over each frame with configurable position, scale, stroke,
color and font, and returns the re-encoded result.

Example:
  overlayd serve --port 8100`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the overlay HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &config.ServerOptions{}

			host, _ := cmd.Flags().GetString("host")
			port, _ := cmd.Flags().GetInt("port")
			fontDir, _ := cmd.Flags().GetString("font-dir")
			workers, _ := cmd.Flags().GetInt("workers")
			verbose, _ := cmd.Flags().GetBool("verbose")

			opts.Host = host
			opts.Port = port
			opts.FontDir = fontDir
			opts.Workers = workers
			opts.Verbose = verbose

			if err := config.ApplyEnv(opts); err != nil {
				return err
			}

			return runServe(opts)
		},
	}
)

func init() {
	serveCmd.Flags().String("host", config.DefaultHost, "Listen host")
	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "Listen port")
	serveCmd.Flags().String("font-dir", "", "Extra directory searched for request fonts")
	serveCmd.Flags().IntP("workers", "w", 0, "Overlay workers per job (0 = auto)")
	serveCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(serveCmd)
}

func runServe(opts *config.ServerOptions) error {
	logger := logging.NewLogger(opts.LogLevel())

	fetcher := fetch.New(os.TempDir(), logger)
	transcoder := processor.New(opts.FontDir, opts.Workers, logger)

	srv := server.New(server.Config{
		Host:      opts.Host,
		Port:      opts.Port,
		Fetcher:   fetcher,
		Processor: transcoder,
		Logger:    logger,
		StartTime: time.Now(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
