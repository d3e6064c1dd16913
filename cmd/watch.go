package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zjrosen/hoard/internal/log"
	"github.com/zjrosen/hoard/internal/pubsub"
	"github.com/zjrosen/hoard/internal/service"
)

var (
	watchMetricsAddr string
	watchDebounce    time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the catalog whenever the document changes",
	Long: `Keep the catalog loaded and reload it whenever the document file changes
on disk. Each change event is printed as it happens.

With --metrics-addr, Prometheus metrics are served on /metrics.

Examples:
  hoard watch
  hoard watch --metrics-addr localhost:9464
  hoard watch --debounce 2s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withRuntime(ctx, func(rt *runtime) error {
			if rt.file == nil {
				return fmt.Errorf("watch needs the file backend")
			}

			if watchMetricsAddr != "" {
				shutdown, err := serveMetrics(rt, watchMetricsAddr)
				if err != nil {
					return err
				}
				defer shutdown()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "metrics on http://%s/metrics\n", watchMetricsAddr)
			}

			go printChanges(ctx, cmd.OutOrStdout(), rt.broker)

			debounce := watchDebounce
			if debounce <= 0 {
				debounce = cfg.Watch.Debounce
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "watching %s (%d assets), Ctrl+C to stop\n",
				rt.path, rt.svc.Catalog().Len())
			return rt.svc.WatchAndReload(ctx, rt.path, debounce)
		})
	},
}

// serveMetrics starts the metrics endpoint and returns its shutdown func.
func serveMetrics(rt *runtime, addr string) (func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.metrics.Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorErr(log.CatService, "metrics server stopped", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}

func printChanges(ctx context.Context, w io.Writer, broker *pubsub.Broker[service.Change]) {
	listener := pubsub.NewListener(ctx, broker)
	for {
		event, ok := listener.Next()
		if !ok {
			return
		}
		_, _ = fmt.Fprintln(w, formatChange(event))
	}
}

func formatChange(event pubsub.Event[service.Change]) string {
	line := fmt.Sprintf("%s %-28s generation=%d assets=%d",
		event.Timestamp.Format(time.TimeOnly), event.Type, event.Payload.Generation, event.Payload.Assets)
	if event.Payload.AssetID != uuid.Nil {
		line += " asset=" + event.Payload.AssetID.String()
	}
	return line
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Wait this long after a change before reloading (default: watch.debounce)")
}
