package commands

import (
	"log"
	"log/slog"

	"github.com/spf13/cobra"

	httpadapter "github.com/custodia-labs/web-fetch-core/internal/adapters/driving/http"
)

// NewServeCmd constructs the `webfetch serve` command, which starts the
// demo HTTP transport over fetch/extract/chunk/compact plus the resource
// GET surface and a Prometheus /metrics endpoint.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webfetch HTTP server",
		Long: `Start the webfetch HTTP server, exposing POST /fetch, /extract, /chunk,
/compact, GET /resources, /resources/{kind}/{sourceID}, and GET /metrics.

This is a thin demo transport, not a production RPC/tool-routing layer.

Examples:
  webfetch serve
  webfetch serve --host 127.0.0.1 --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()
			p := buildPipeline(logger)

			cfg := httpadapter.DefaultConfig()
			cfg.Host = p.cfg.HTTPHost
			cfg.Port = p.cfg.HTTPPort
			if host != "" {
				cfg.Host = host
			}
			if port > 0 {
				cfg.Port = port
			}
			cfg.Version = version
			cfg.Logger = logger
			cfg.Registry = p.registry

			server := httpadapter.NewServer(cfg, p.fetch, p.extract, p.chunk, p.compact, p.resource)
			log.Printf("webfetch %s serving on %s:%d", version, cfg.Host, cfg.Port)
			return server.Start()
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "bind host (default 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "bind port (default 8080, or HTTP_PORT)")

	return cmd
}
