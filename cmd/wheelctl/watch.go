package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"axon-backend/application/session"
	"axon-backend/domain/versioning"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (a *app) watchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch WHEEL_ID...",
		Short: "Follow changes to one or more wheels",
		Long: "Opens every wheel, keeps it in sync with the API and prints what changed\n" +
			"on each refresh until interrupted.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				interval = a.cfg.PollInterval
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &watcher{out: cmd.OutOrStdout()}
			client := a.client()

			g, ctx := errgroup.WithContext(ctx)
			for _, id := range args {
				s := session.New(a.opts.userID,
					session.WithConfig(a.cfg.DomainConfig()),
					session.WithStrategy(a.cfg.Strategy()),
					session.WithFetcher(client),
					session.WithLogger(a.logger),
				)
				g.Go(func() error {
					return w.follow(ctx, id, s, interval, a.logger)
				})
			}

			err := g.Wait()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "refresh interval (default from config)")
	return cmd
}

// watcher serialises output from concurrently followed wheels
type watcher struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *watcher) printf(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format, args...)
}

// follow opens wheelID, polls it in the background and reports every
// difference between consecutive snapshots until ctx ends
func (w *watcher) follow(ctx context.Context, wheelID string, s *session.Session, interval time.Duration, logger *zap.Logger) error {
	if err := s.Open(ctx, wheelID); err != nil {
		return fmt.Errorf("%s: %w", wheelID, err)
	}
	defer s.Close()

	last := s.Graph()
	w.printf("%s %s %s (%d nodes)\n", good.Sprint("●"), brand.Sprint(wheelID), s.Title(), len(last.Nodes))

	poller := session.NewPoller(s, interval, logger)
	poller.Start(ctx)
	defer poller.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			current := s.Graph()
			if line := describeDiff(versioning.Diff(last, current)); line != "" {
				w.printf("%s %s %s\n", subtle.Sprint(time.Now().Format("15:04:05")), brand.Sprint(wheelID), line)
			}
			last = current
		}
	}
}

// describeDiff renders d as one line, empty when nothing changed
func describeDiff(d versioning.GraphDiff) string {
	if d.IsEmpty() {
		return ""
	}
	parts := []struct {
		n     int
		label string
	}{
		{len(d.NodesAdded), "nodes added"},
		{len(d.NodesRemoved), "nodes removed"},
		{len(d.NodesUpdated), "nodes updated"},
		{len(d.NodesMoved), "nodes moved"},
		{len(d.EdgesAdded), "edges added"},
		{len(d.EdgesRemoved), "edges removed"},
		{len(d.EdgesUpdated), "edges updated"},
	}
	line := ""
	for _, p := range parts {
		if p.n == 0 {
			continue
		}
		if line != "" {
			line += ", "
		}
		line += fmt.Sprintf("%d %s", p.n, p.label)
	}
	return line
}
