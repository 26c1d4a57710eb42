package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	configPath = flag.String("config", "./repograph.toml", "Path to config file")
	localDir   = flag.String("local", "", "Analyze a local directory instead of a GitHub repository")
	format     = flag.String("format", "", "Render as json, dot, mermaid, plantuml, tsv, nodes, markdown or sarif instead of a summary")
	outPath    = flag.String("out", "", "Write rendered output to a file instead of stdout")
	inject     = flag.String("inject", "", "Inject a Mermaid diagram between repograph markers in a Markdown file")
	trace      = flag.Bool("trace", false, "Trace the shortest import chain between two files")
	impact     = flag.String("impact", "", "Analyze change impact for a file path")
	serve      = flag.Bool("serve", false, "Serve the HTTP API")
	watch      = flag.Bool("watch", false, "Re-analyze the -local directory whenever it changes")
	showHist   = flag.Bool("history", false, "List stored snapshots for the repository")
	since      = flag.Duration("since", 30*24*time.Hour, "How far back -history looks")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "0.3.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: repograph [flags] owner/repo\n       repograph [flags] -local <dir>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("repograph v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	opts := options{
		ConfigPath: *configPath,
		Local:      *localDir,
		Format:     *format,
		Out:        *outPath,
		Inject:     *inject,
		Trace:      *trace,
		Impact:     *impact,
		Serve:      *serve,
		Watch:      *watch,
		History:    *showHist,
		Since:      *since,
		Args:       flag.Args(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		slog.Error("repograph failed", "error", err)
		stop()
		os.Exit(1)
	}
}
