package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/hireline/internal/infrastructure/sse"
	"github.com/felixgeelhaar/hireline/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/hireline/pkg/application"
	"github.com/felixgeelhaar/hireline/pkg/domain/audit"
)

var (
	watchOnce        bool
	watchMirrorAddr  string
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the live audit trail headless and serve the local mirror",
	Long: `Watch polls the backend snapshot, follows the push channel and prints
every audit event as it arrives. With --mirror-addr the buffered trail is
re-served as SSE on /events together with /audit, /audit/verify and /metrics.
The config file, when there is one, is reloaded on change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return MapError(err)
		}
		defer services.Close()
		if cmd.Flags().Changed("mirror-addr") {
			services.Config.MirrorAddr = watchMirrorAddr
		}
		if cmd.Flags().Changed("metrics-addr") {
			services.Config.MetricsAddr = watchMetricsAddr
		}
		return MapError(runWatch(cmd.Context(), cmd.OutOrStdout(), services, watchOnce))
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Print one snapshot and exit")
	watchCmd.Flags().StringVar(&watchMirrorAddr, "mirror-addr", "", "Serve the audit mirror, audit and metrics endpoints on this address")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve /metrics alone on this address")
	RootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, out io.Writer, services *wiring.Services, once bool) error {
	dash := services.Dashboard
	if once {
		err := dash.Refresh(ctx)
		printSnapshot(out, dash.Snapshot(), dash.Audit.Latest(auditRows))
		return err
	}

	dash.OnAudit(func(e audit.Event) {
		_, _ = fmt.Fprintln(out, plainAuditLine(e))
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := dash.Start(ctx); err != nil {
			services.Logger.Warn("first refresh incomplete", "error", err)
		}
		printSnapshot(out, dash.Snapshot(), dash.Audit.Latest(auditRows))
		<-ctx.Done()
		return nil
	})
	if addr := services.Config.MirrorAddr; addr != "" {
		g.Go(func() error {
			return serveHTTP(ctx, addr, services.Router(), services.Logger)
		})
	}
	if addr := services.Config.MetricsAddr; addr != "" && addr != services.Config.MirrorAddr {
		g.Go(func() error {
			return serveHTTP(ctx, addr, sse.NewRouter(sse.Routes{Metrics: services.Metrics.Handler()}), services.Logger)
		})
	}
	g.Go(func() error {
		err := services.WatchConfig(ctx)
		if errors.Is(err, wiring.ErrNoConfigFile) || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// serveHTTP runs a server until ctx is done. Request contexts derive from
// ctx so open SSE streams end with it.
func serveHTTP(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	}
}

func printSnapshot(out io.Writer, snap application.Snapshot, latest []audit.Event) {
	health := "offline"
	if snap.Health != nil {
		health = "ok"
		if !snap.Health.OK {
			health = "degraded"
		}
	}
	_, _ = fmt.Fprintf(out, "backend: %s\n", health)
	for _, tile := range snap.KPI {
		_, _ = fmt.Fprintf(out, "  %-20s %s\n", tile.Key, tile.Value)
	}
	c := snap.Capacity
	_, _ = fmt.Fprintf(out, "capacity: %d available, %d held, %d confirmed\n", c.Available, c.Held, c.Confirmed)
	_, _ = fmt.Fprintf(out, "jobs: %d, candidates: %d\n", len(snap.Jobs), len(snap.Candidates))
	for src, msg := range snap.Errors {
		_, _ = fmt.Fprintf(out, "stale %s: %s\n", src, msg)
	}
	for _, e := range latest {
		_, _ = fmt.Fprintln(out, plainAuditLine(e))
	}
}

func plainAuditLine(e audit.Event) string {
	return fmt.Sprintf("%s %s %-9s %-14s %s",
		e.Glyph().Icon, e.Time().UTC().Format(time.RFC3339), e.Actor, audit.Classify(e.Action), e.Action)
}
