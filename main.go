package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"mediapress/internal/logging"
	"mediapress/internal/memory"
	"mediapress/internal/payload"
	"mediapress/internal/policy"
	"mediapress/internal/progress"
	"mediapress/internal/transcode"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"
)

func main() {
	os.Exit(run())
}

// run carries the real main body so deferred cleanup survives the exit code.
func run() int {
	quality := flag.Float64("quality", 0.7, "compression quality factor (0.1-1.0)")
	outDir := flag.String("out", ".", "directory for compressed output files")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	estimate := flag.Bool("estimate", false, "print estimated output sizes without compressing")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		return 2
	}

	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err == nil {
		logging.Debug("Loaded configuration from .env")
	}

	memory.ConfigureFromEnv()

	transcode.InitVips()
	defer transcode.ShutdownVips()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()
	defer monitor.Stop()

	dispatcher := transcode.NewDispatcher()
	exitCode := 0

	for _, path := range flag.Args() {
		if ctx.Err() != nil {
			logging.Info("Interrupted, stopping")
			break
		}
		if !monitor.WaitIfPaused() {
			break
		}

		p, err := payload.FromFile(path)
		if err != nil {
			logging.Error("Skipping %s: %v", path, err)
			exitCode = 1
			continue
		}

		if *estimate {
			printEstimate(p, *quality)
			continue
		}

		res := dispatcher.Compress(ctx, p, *quality, consoleSink(p.Name))
		if err := writeResult(*outDir, path, res); err != nil {
			logging.Error("Writing output for %s: %v", path, err)
			exitCode = 1
		}
	}

	return exitCode
}

// consoleSink renders progress in place on a terminal and stays quiet
// otherwise, where the structured logs already tell the story.
func consoleSink(name string) progress.Sink {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return func(percent int, message string) {
			logging.Debug("%s: %d%% %s", name, percent, message)
		}
	}
	return func(percent int, message string) {
		fmt.Fprintf(os.Stderr, "\r\033[K%s: %3d%% %s", name, percent, message)
		if percent >= 100 {
			fmt.Fprintln(os.Stderr)
		}
	}
}

// printEstimate shows the non-binding size preview for one file.
func printEstimate(p *payload.Payload, quality float64) {
	if !policy.IsEligibleCategory(p.MIME) || !policy.ShouldAttempt(p.Size) {
		fmt.Printf("%s: %d bytes (would keep original)\n", p.Name, p.Size)
		return
	}
	est := policy.EstimateCompressedSize(p.Size, quality)
	fmt.Printf("%s: %d bytes -> ~%d bytes\n", p.Name, p.Size, est)
}

// writeResult writes the compression outcome next to the requested output
// directory. Untranscoded results are not copied; the source already holds
// the bytes.
func writeResult(outDir, srcPath string, res transcode.Result) error {
	if !res.Transcoded {
		logging.Info("Kept original %s", res.Payload.Name)
		return nil
	}

	outPath := filepath.Join(outDir, res.Payload.Name)
	if sameFile(srcPath, outPath) {
		return fmt.Errorf("output %s would overwrite the source", outPath)
	}

	r, err := res.Payload.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(outPath)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	logging.Info("Wrote %s (%d bytes)", outPath, res.Payload.Size)
	return nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// serveMetrics exposes Prometheus metrics and liveness endpoints for
// long-running batch jobs.
func serveMetrics(addr string) {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods("GET")

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logging.Info("Metrics server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Error("Metrics server error: %v", err)
	}
}
