package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/SameOldNick/tnnlr/api"
	"github.com/SameOldNick/tnnlr/tunnel"
)

var agentOptions struct {
	port           uint16
	url            string
	apiKey         string
	localHost      string
	urlFile        string
	maxConnections int
	retry          uint64
	retryDelay     float64
}

func init() {
	addAgentFlags(rootCmd.Flags())
	_ = rootCmd.MarkFlagRequired("port")
	_ = rootCmd.MarkFlagRequired("url")
}

func addAgentFlags(flags *pflag.FlagSet) {
	flags.Uint16Var(&agentOptions.port, "port", 0,
		"local server port to expose (required)")
	flags.StringVar(&agentOptions.url, "url", "",
		"control plane URL that assigns the tunnel endpoint (required)")
	flags.StringVar(&agentOptions.apiKey, "api-key", "",
		"control plane API key (defaults to $TNNLR_API_KEY)")
	flags.StringVar(&agentOptions.localHost, "local-host", "localhost",
		"host of the local server traffic is forwarded to")
	flags.StringVar(&agentOptions.urlFile, "url-file", "",
		"write the assigned public URL to this file")
	flags.IntVar(&agentOptions.maxConnections, "max-connections", 10,
		"number of tunnel connections to keep open")
	flags.Uint64Var(&agentOptions.retry, "retry", 3,
		"how many times to retry endpoint acquisition")
	flags.Float64Var(&agentOptions.retryDelay, "retry-delay", 5.0,
		"seconds to wait between endpoint acquisition retries")
}

func runAgent(ctx context.Context) error {
	if agentOptions.port == 0 {
		return fmt.Errorf("--port must be between 1 and 65535")
	}

	apiKey := agentOptions.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("TNNLR_API_KEY")
	}

	client := api.New(
		api.WithAPIKey(apiKey),
		api.WithRetry(agentOptions.retry),
		api.WithRetryDelay(time.Duration(agentOptions.retryDelay*float64(time.Second))),
	)
	endpoint, err := client.RequestEndpoint(ctx, agentOptions.url)
	if err != nil {
		return err
	}
	log.Info().Str("url", endpoint.URL).Str("remote", endpoint.RemoteAddr()).Msg("tunnel assigned")

	if agentOptions.urlFile != "" {
		if err := os.WriteFile(agentOptions.urlFile, []byte(endpoint.URL+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write url file: %w", err)
		}
	}

	count := agentOptions.maxConnections
	if endpoint.MaxConnCount > 0 && count > endpoint.MaxConnCount {
		log.Warn().Int("max-conn-count", endpoint.MaxConnCount).Msg("control plane capped the connection count")
		count = endpoint.MaxConnCount
	}

	tun := tunnel.New(
		tunnel.WithRemoteHost(endpoint.Host),
		tunnel.WithRemotePort(endpoint.Port),
		tunnel.WithLocalHost(agentOptions.localHost),
		tunnel.WithLocalPort(agentOptions.port),
		tunnel.WithSecretKey(endpoint.SecretKey),
	)
	return tun.RunPool(ctx, count, tunnel.LogEvents())
}
