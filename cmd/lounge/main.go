package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/loungelabs/lounge/config"
	"github.com/loungelabs/lounge/src/feed"
	"github.com/loungelabs/lounge/src/history"
	"github.com/loungelabs/lounge/src/hub"
	"github.com/loungelabs/lounge/src/presence"
	"github.com/loungelabs/lounge/src/server"
	"github.com/loungelabs/lounge/src/service"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lounge",
		Short: "Lounge - realtime presence, chat, and social feed server",
		Long: `A realtime hub where clients connect over WebSocket, announce a
profile, exchange public and directed messages, and share a social feed
with likes and comments.

State lives in process memory for the lifetime of the server.`,
	}

	rootCmd.AddCommand(createStartCmd())
	rootCmd.AddCommand(createStatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func createStartCmd() *cobra.Command {
	var port int
	var host string
	var debug bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the lounge server",
		Long: `Start the lounge server. The server runs until interrupted (Ctrl+C).

Open http://localhost:3000/ (or your configured host:port) in a browser.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromEnv()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}

			level := zerolog.InfoLevel
			if debug {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
				Level(level).
				With().Timestamp().Logger()

			h := hub.New(logger)
			reg := presence.NewRegistry(logger)
			posts := feed.NewStore(cfg.FeedCapacity, logger)
			ring := history.NewRing(cfg.MaxHistory)
			svc := service.New(h, reg, posts, ring, logger)
			srv := server.New(cfg, h, svc, logger)

			go h.Run()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			errChan := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil {
					errChan <- err
				}
			}()

			color.Green(">>> Lounge is live at http://%s", srv.Addr())

			select {
			case <-sigChan:
				color.Yellow("\nReceived interrupt signal, shutting down...")
				if err := srv.Stop(); err != nil {
					color.Red("Error shutting down server: %v", err)
				}
				h.Stop()
				color.Green("Lounge server stopped gracefully")
			case err := <-errChan:
				color.Red("Server error: %v", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "Port to listen on")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "Host to bind to")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}

func createStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check lounge server status",
		Long:  "Check if a lounge server is running and display its status",
		Run: func(cmd *cobra.Command, args []string) {
			ports := []int{3000, 8080}
			for _, p := range ports {
				resp, err := http.Get(fmt.Sprintf("http://localhost:%d/healthz", p))
				if err == nil {
					resp.Body.Close()
					if resp.StatusCode == http.StatusOK {
						color.Green("Lounge server is running on port %d", p)
						return
					}
				}
			}
			color.Red("No lounge server found")
		},
	}
}
