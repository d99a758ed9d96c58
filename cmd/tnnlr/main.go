// Package main implements the tnnlr command line tunneling agent.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/SameOldNick/tnnlr/version"
)

// shutdownGrace is how long in-flight tunnel connections get to drain
// after a signal before the process force-exits.
const shutdownGrace = 5 * time.Second

var rootCmd = &cobra.Command{
	Use:     "tnnlr",
	Short:   "expose a local server through a tnnlr rendezvous endpoint",
	Version: version.FullVersion(),
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAgent(cmd.Context())
	},
}

func main() {
	setupLogger()

	err := rootCmd.ExecuteContext(signalContext())
	if err != nil {
		log.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
}

func signalContext() context.Context {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := <-sigs
		log.Info().Str("signal", sig.String()).Msg("caught signal, quitting...")
		cancel()
		time.Sleep(shutdownGrace)
		log.Error().Msg("did not shut down gracefully, exit")
		os.Exit(0)
	}()
	return ctx
}

func setupLogger() {
	log.Logger = log.Level(zerolog.InfoLevel)

	// set the log level
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if lvl, err := zerolog.ParseLevel(raw); err == nil {
			log.Logger = log.Logger.Level(lvl)
		}
	}

	zerolog.DefaultContextLogger = &log.Logger
}
