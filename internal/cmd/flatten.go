package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hpdcache/flistflat/internal/config"
	"github.com/hpdcache/flistflat/internal/display"
	"github.com/hpdcache/flistflat/internal/flist"
	"github.com/hpdcache/flistflat/internal/logger"
	"github.com/hpdcache/flistflat/internal/metrics"
	"github.com/hpdcache/flistflat/internal/updater"
	"github.com/hpdcache/flistflat/internal/watch"
	"github.com/spf13/cobra"
)

// stdinName labels standard input in diagnostics.
const stdinName = "<stdin>"

// flattenJob is one configured flatten run. Empty input or output select
// stdin or stdout.
type flattenJob struct {
	cfg         *config.Config
	input       string
	output      string
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	lockTimeout time.Duration
	log         logger.Logger
	metrics     *metrics.Recorder
	metricsFile string
}

func runFlatten(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	lockTimeout, _ := cmd.Flags().GetDuration("lock-timeout")
	job := &flattenJob{
		cfg:         cfg,
		input:       stdioArg(args, 0),
		output:      stdioArg(args, 1),
		in:          cmd.InOrStdin(),
		out:         cmd.OutOrStdout(),
		errOut:      cmd.ErrOrStderr(),
		lockTimeout: lockTimeout,
		log:         log,
	}

	job.metricsFile, _ = cmd.Flags().GetString("metrics-file")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	if job.metricsFile != "" || metricsAddr != "" {
		job.metrics = metrics.NewRecorder()
	}

	watchMode, _ := cmd.Flags().GetBool("watch")
	if !watchMode {
		if metricsAddr != "" {
			return fmt.Errorf("--metrics-addr requires --watch")
		}
		_, err := job.run(cmd.Context())
		return err
	}

	if job.input == "" {
		return fmt.Errorf("--watch requires a named input Flist")
	}
	if job.output == "" {
		return fmt.Errorf("--watch requires a named output file")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if metricsAddr != "" {
		stop, err := serveMetrics(metricsAddr, job.metrics, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	return watchAndFlatten(ctx, job, 0)
}

// stdioArg returns args[i], or "" when it is absent or "-".
func stdioArg(args []string, i int) string {
	if i >= len(args) || args[i] == "-" {
		return ""
	}
	return args[i]
}

func (j *flattenJob) name() string {
	if j.input == "" {
		return stdinName
	}
	return j.input
}

// run flattens once and records the outcome in the job's metrics.
func (j *flattenJob) run(ctx context.Context) (*flist.Result, error) {
	start := time.Now()
	res, err := j.flatten(ctx)
	if j.metrics == nil {
		return res, err
	}

	j.metrics.Observe(res, err, time.Since(start))
	if j.metricsFile != "" {
		if werr := j.metrics.WriteTextfile(j.metricsFile); werr != nil {
			j.log.LogWarn(fmt.Sprintf("Failed to write metrics to %s: %v", j.metricsFile, werr))
		}
	}
	return res, err
}

// flatten resolves the input. Output to stdout is streamed; a named output
// is buffered and replaced atomically only when resolution succeeds.
func (j *flattenJob) flatten(ctx context.Context) (*flist.Result, error) {
	start := time.Now()
	resolver := flist.NewResolver(j.cfg.ResolverOptions(j.log))

	var buf bytes.Buffer
	dst := j.out
	if j.output != "" {
		dst = &buf
	}

	var (
		res *flist.Result
		err error
	)
	if j.input == "" {
		res, err = resolver.Resolve(ctx, j.in, stdinName, dst)
	} else {
		res, err = resolver.ResolveFile(ctx, j.input, dst)
	}
	if err != nil {
		return res, err
	}

	if j.output != "" {
		err := updater.WriteScript(j.output, buf.Bytes(),
			updater.WithTimeout(j.lockTimeout),
			updater.WithMonitor(j.logWrite))
		if err != nil {
			return res, fmt.Errorf("failed to write %s: %w", j.output, err)
		}
	}

	if w, ok := display.WarnSkippedLines(res.Skipped, j.cfg.Frontends); ok {
		w.Display(j.errOut)
	}

	j.log.LogSummary(j.name(), res, time.Since(start))
	return res, nil
}

func (j *flattenJob) logWrite(m updater.UpdateMetrics) {
	switch {
	case m.Err != nil:
		return
	case m.Unchanged:
		j.log.LogDebug(fmt.Sprintf("%s is up to date", m.Path))
	default:
		j.log.LogDebug(fmt.Sprintf("Wrote %d bytes to %s (lock wait %s)", m.BytesWritten, m.Path, m.LockWait.Round(time.Millisecond)))
	}
}

// watchAndFlatten flattens, then re-flattens each time a Flist in the
// include tree changes, until ctx is cancelled. A failed run is logged and
// the previous output is left untouched. A zero debounce keeps the
// watcher's default.
func watchAndFlatten(ctx context.Context, job *flattenJob, debounce time.Duration) error {
	res, err := job.run(ctx)
	if err != nil {
		job.log.LogError(err.Error())
	}

	w, err := newWatcher(watchPaths(job.input, res, err), debounce)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", job.input, err)
	}
	defer w.Close()

	job.log.LogInfo(fmt.Sprintf("Watching %d Flist files for changes (Ctrl+C to stop)", w.Files()))

	for {
		select {
		case <-ctx.Done():
			job.log.LogInfo("Watch stopped")
			return nil

		case ev := <-w.Events():
			job.log.LogInfo(fmt.Sprintf("%s %s, flattening again", ev.Path, ev.Op))

			res, err := job.run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				job.log.LogError(err.Error())
			}

			if err := w.SetPaths(watchPaths(job.input, res, err)); err != nil {
				job.log.LogWarn(fmt.Sprintf("Failed to update watch set: %v", err))
			}

		case err := <-w.Errors():
			job.log.LogWarn(fmt.Sprintf("Watch error: %v", err))
		}
	}
}

// watchPaths returns the files a run depends on: every Flist it opened,
// the root, and an include that could not be found, so creating it
// triggers the next run.
func watchPaths(root string, res *flist.Result, err error) []string {
	paths := []string{root}
	if res != nil {
		paths = append(paths, res.Paths()...)
	}
	var incErr *flist.IncludeError
	if errors.As(err, &incErr) && errors.Is(incErr.Err, flist.ErrFileNotFound) && incErr.Path != "" {
		// Only watchable while its directory exists.
		if _, statErr := os.Stat(filepath.Dir(incErr.Path)); statErr == nil {
			paths = append(paths, incErr.Path)
		}
	}
	return paths
}

// serveMetrics starts an HTTP server exposing /metrics. The returned func
// shuts it down.
func serveMetrics(addr string, rec *metrics.Recorder, log logger.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.LogError(fmt.Sprintf("Metrics server stopped: %v", err))
		}
	}()
	log.LogInfo(fmt.Sprintf("Serving metrics on http://%s/metrics", ln.Addr()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}

func newWatcher(paths []string, debounce time.Duration) (*watch.Watcher, error) {
	w, err := watch.New(paths)
	if err != nil {
		return nil, err
	}
	if debounce > 0 {
		w.SetDebounceDelay(debounce)
	}
	return w, nil
}
