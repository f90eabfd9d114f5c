// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package serve implements the serve command, which runs the MCP server on
// stdio.
package serve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tombee/n8n-mcp/internal/commands/shared"
	"github.com/tombee/n8n-mcp/internal/log"
	"github.com/tombee/n8n-mcp/internal/mcp/server"
	"github.com/tombee/n8n-mcp/internal/tracing"
	"github.com/tombee/n8n-mcp/pkg/n8n"
)

const shutdownTimeout = 5 * time.Second

// Options holds the serve flags.
type Options struct {
	// MetricsAddr serves Prometheus metrics when set, e.g. ":9464".
	MetricsAddr string

	// Trace enables OpenTelemetry tracing.
	Trace bool
}

// NewCommand creates the serve command
func NewCommand() *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the n8n MCP server on stdio",
		Long: `Start the n8n MCP (Model Context Protocol) server.

The server exposes the n8n REST API as tools that AI assistants can call:
workflows (list, get, create, update, delete, activate, deactivate),
executions (list, get, delete), webhooks (run_webhook) and health_check.

The server speaks MCP over stdio. Logs are written to stderr.

Configuration example for an MCP client:
  {
    "mcpServers": {
      "n8n": {
        "command": "n8n-mcp",
        "args": ["serve"],
        "env": {
          "N8N_API_URL": "http://localhost:5678/api/v1",
          "N8N_API_KEY": "..."
        }
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if shared.StdinIsTerminal() {
				cmd.PrintErrln("Waiting for MCP messages on stdin. Run this command from an MCP client.")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, opts, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "Enable OpenTelemetry tracing (stderr, or OTLP when OTEL_EXPORTER_OTLP_ENDPOINT is set)")

	return cmd
}

// Run serves MCP on in/out until ctx is cancelled or in reaches EOF. With
// a metrics address, the metrics endpoint runs alongside and stops with the
// MCP server.
func Run(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	cfg, err := shared.LoadConfig(ctx)
	if err != nil {
		return err
	}
	logger := shared.NewLogger(cfg)
	versionStr, _, _ := shared.GetVersion()

	var clientOpts []n8n.Option
	var toolMetrics *tracing.ToolMetrics
	var metricsServer *metricsEndpoint

	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		clientOpts = append(clientOpts, n8n.WithMetrics(n8n.NewMetrics(reg)))

		mp, err := tracing.NewMeterProvider(reg, "n8n-mcp", versionStr)
		if err != nil {
			return shared.NewFailureError("failed to set up metrics", err)
		}
		defer shutdown(logger, "meter provider", mp.Shutdown)

		toolMetrics, err = tracing.NewToolMetrics(mp)
		if err != nil {
			return shared.NewFailureError("failed to set up metrics", err)
		}

		metricsServer, err = listenMetrics(opts.MetricsAddr, reg)
		if err != nil {
			return shared.NewFailureError("failed to start metrics server", err)
		}
	}

	if opts.Trace {
		tp, err := tracing.New(ctx, tracing.FromEnv(tracing.DefaultConfig(versionStr)))
		if err != nil {
			metricsServer.close()
			return shared.NewFailureError("failed to set up tracing", err)
		}
		defer shutdown(logger, "tracer provider", tp.Shutdown)
		clientOpts = append(clientOpts, n8n.WithTracer(tp.Tracer("github.com/tombee/n8n-mcp/pkg/n8n")))
	}

	client, err := shared.NewClient(cfg, logger, clientOpts...)
	if err != nil {
		metricsServer.close()
		return err
	}

	srv, err := server.NewServer(server.ServerConfig{
		Version:   versionStr,
		Client:    client,
		Logger:    logger,
		RateLimit: cfg.Server.RateLimit,
		Metrics:   toolMetrics,
	})
	if err != nil {
		metricsServer.close()
		return shared.NewFailureError("failed to create MCP server", err)
	}

	logger.Info("configuration loaded",
		slog.String("n8n_url", cfg.N8N.APIURL),
		slog.String("api_key_source", cfg.APIKeySource),
		slog.Int("max_retries", cfg.N8N.MaxRetries),
		slog.Duration("retry_delay", cfg.N8N.RetryDelay),
		slog.Int("breaker_threshold", cfg.N8N.BreakerThreshold),
	)

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if metricsServer != nil {
		logger.Info("serving metrics", slog.String("addr", metricsServer.addr()))
		g.Go(metricsServer.serve)
		g.Go(func() error {
			<-gctx.Done()
			shutdown(logger, "metrics server", metricsServer.server.Shutdown)
			return nil
		})
	}

	g.Go(func() error {
		// stdin closing ends the process, metrics included.
		defer stop()
		return srv.Serve(gctx, in, out)
	})

	if err := g.Wait(); err != nil {
		return shared.NewFailureError("MCP server stopped", err)
	}
	return nil
}

// metricsEndpoint serves /metrics on a bound listener.
type metricsEndpoint struct {
	ln     net.Listener
	server *http.Server
}

// listenMetrics binds addr so a bad address fails before the MCP server
// starts.
func listenMetrics(addr string, reg *prometheus.Registry) (*metricsEndpoint, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &metricsEndpoint{
		ln: ln,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (m *metricsEndpoint) addr() string {
	return m.ln.Addr().String()
}

func (m *metricsEndpoint) serve() error {
	if err := m.server.Serve(m.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// close releases the listener of an endpoint that never started serving.
func (m *metricsEndpoint) close() {
	if m != nil {
		_ = m.ln.Close()
	}
}

func shutdown(logger *slog.Logger, what string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn(fmt.Sprintf("failed to stop %s", what), log.Error(err))
	}
}
