package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bramblebt/bramble"
	"github.com/bramblebt/bramble/internal/logging"
	"github.com/bramblebt/bramble/pkg/domain"
	"github.com/bramblebt/bramble/pkg/publisher"
	"github.com/bramblebt/bramble/pkg/trace"
	"github.com/bramblebt/bramble/pkg/tree"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <tree.yaml>",
	Short: "Execute a behavior tree to completion",
	Long:  `Loads a tree definition, ticks it until the root settles and prints the verdict.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTree(cmd, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("root", "", "Tree id to execute (default: the document's main tree)")
	runCmd.Flags().Duration("interval", bramble.DefaultTickInterval, "Pause between ticks while Running")
	runCmd.Flags().String("serve", "", "Serve the live tree over HTTP on this address (e.g. :8085)")
	runCmd.Flags().String("trace-file", "", "Append status transitions to this NDJSON file")
	runCmd.Flags().String("trace-db", "", "Persist status transitions into this bbolt database")
	runCmd.Flags().BoolP("watch", "w", false, "Re-run the tree whenever the definition file changes")
	runCmd.Flags().StringArray("set", nil, "Seed a root blackboard entry (key=value, repeatable)")
}

func runTree(cmd *cobra.Command, path string) error {
	levelName, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logger := logging.New(level)

	rootID, _ := cmd.Flags().GetString("root")
	interval, _ := cmd.Flags().GetDuration("interval")
	serveAddr, _ := cmd.Flags().GetString("serve")
	traceFile, _ := cmd.Flags().GetString("trace-file")
	traceDB, _ := cmd.Flags().GetString("trace-db")
	watchMode, _ := cmd.Flags().GetBool("watch")
	seeds, _ := cmd.Flags().GetStringArray("set")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := bramble.New(bramble.WithLogger(logger))

	execute := func(ctx context.Context) (domain.Status, error) {
		var buildOpts []tree.BuildOption
		if rootID != "" {
			buildOpts = append(buildOpts, tree.WithRootTree(rootID))
		}
		t, err := factory.CreateTreeFromFile(path, buildOpts...)
		if err != nil {
			return domain.StatusIdle, err
		}
		if err := seedBlackboard(t, seeds); err != nil {
			return domain.StatusIdle, err
		}

		runner := &bramble.Runner{Interval: interval, Logger: logger}

		if traceFile != "" {
			fl, err := trace.NewFileLogger(traceFile)
			if err != nil {
				return domain.StatusIdle, err
			}
			defer fl.Close()
			t.Subscribe(fl.Record)
		}
		if traceDB != "" {
			bl, err := trace.NewBoltLogger(traceDB)
			if err != nil {
				return domain.StatusIdle, err
			}
			defer bl.Close()
			t.Subscribe(bl.Record)
			logger.Info("trace session", "db", traceDB, "session", bl.Session())
		}
		if serveAddr != "" {
			reg := prometheus.NewRegistry()
			metrics, err := trace.NewMetrics(reg)
			if err != nil {
				return domain.StatusIdle, err
			}
			t.Subscribe(metrics.Record)
			runner.OnTick = func(_ domain.Status, elapsed time.Duration) {
				metrics.ObserveTick(elapsed)
			}

			srv := &http.Server{
				Addr:    serveAddr,
				Handler: publisher.New(t, publisher.WithMetrics(reg)).Handler(),
			}
			go func() {
				logger.Info("publisher listening", "addr", serveAddr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("publisher stopped", "error", err)
				}
			}()
			defer srv.Shutdown(context.Background())
		}

		return runner.Run(ctx, t)
	}

	if !watchMode {
		status, err := execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(status.String())
		return nil
	}
	return watchLoop(ctx, logger, path, execute)
}

// watchLoop runs the tree, then re-runs it every time the definition file
// changes on disk. The in-flight run is halted through context cancellation
// before the reload.
func watchLoop(ctx context.Context, logger *slog.Logger, path string, execute func(context.Context) (domain.Status, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	for {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			status, err := execute(runCtx)
			if runCtx.Err() != nil {
				return
			}
			if err != nil {
				logger.Error("run failed", "error", err)
				return
			}
			logger.Info("run finished", "status", status.String())
		}()

	wait:
		for {
			select {
			case <-ctx.Done():
				cancel()
				<-done
				return nil
			case ev := <-watcher.Events:
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				logger.Info("definition changed, reloading", "file", ev.Name)
				cancel()
				<-done
				// Editors replace files on save; re-arm the watch.
				_ = watcher.Add(path)
				break wait
			case err := <-watcher.Errors:
				cancel()
				<-done
				return fmt.Errorf("watch error: %w", err)
			}
		}
	}
}

// seedBlackboard applies --set key=value pairs to the root scope.
func seedBlackboard(t *tree.Tree, seeds []string) error {
	for _, kv := range seeds {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid --set %q, expected key=value", kv)
		}
		if err := t.Blackboard().Set(key, value); err != nil {
			return err
		}
	}
	return nil
}
