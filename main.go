package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/insightdelivered/card-statement-parser/internal/api"
	"github.com/insightdelivered/card-statement-parser/internal/config"
	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/logger"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
	"github.com/insightdelivered/card-statement-parser/internal/writer"
)

const version = api.Version

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options are the parsed command line flags.
type options struct {
	format  string
	output  string
	pages   int
	ocr     bool
	summary bool
	serve   bool
	addr    string
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("card-statement-parser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.format, "format", "json", "Output format: json or csv")
	fs.StringVar(&opts.output, "output", "", "Output file path (defaults to stdout)")
	fs.IntVar(&opts.pages, "pages", extractor.DefaultMaxPages, "Number of leading pages to decode (overrides STMT_MAX_PAGES)")
	fs.BoolVar(&opts.ocr, "ocr", false, "Fall back to tesseract OCR for image-only statements (overrides STMT_ENABLE_OCR)")
	fs.BoolVar(&opts.summary, "summary", false, "Include the detection summary in JSON output")
	fs.BoolVar(&opts.serve, "serve", false, "Start the HTTP API instead of parsing files")
	fs.StringVar(&opts.addr, "addr", ":8080", "Listen address for -serve (overrides STMT_ADDR)")
	versionFlag := fs.Bool("version", false, "Print version and exit")
	helpFlag := fs.Bool("help", false, "Show usage help")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Credit Card Statement Parser
by Insight Delivered (QEA AutoLens)

Extracts the issuer, card last 4 digits, billing cycle, payment due date,
total balance and transactions from credit card statements.

Usage:
  card-statement-parser [flags] <statement.pdf|statement.txt> [...]
  card-statement-parser -serve [-addr :8080]

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Examples:
  # Parse a statement and print JSON
  card-statement-parser statement.pdf

  # Transactions as CSV
  card-statement-parser -format=csv -output=transactions.csv statement.pdf

  # Already extracted text, with a detection summary
  card-statement-parser -summary statement.txt

Environment:
  STMT_ADDR, STMT_LOG_LEVEL, STMT_LOG_FORMAT, STMT_MAX_PAGES,
  STMT_MAX_UPLOAD_MB, STMT_ENABLE_OCR, STMT_CACHE_TTL,
  STMT_RATE_LIMIT_RPS, STMT_RATE_LIMIT_BURST, STMT_CONFIG_FILE
`)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *versionFlag {
		fmt.Fprintf(stdout, "card-statement-parser v%s\n", version)
		return 0
	}
	if *helpFlag || (!opts.serve && fs.NArg() == 0) {
		fs.Usage()
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	applyConfig(fs, cfg, &opts)

	log := logger.New(stderr, cfg.LogLevel, cfg.LogFormat)

	if opts.serve {
		if err := serve(cfg, opts, log); err != nil {
			log.Error("server stopped", "error", err)
			return 1
		}
		return 0
	}

	opts.format = strings.ToLower(opts.format)
	if opts.format != "json" && opts.format != "csv" {
		fmt.Fprintf(stderr, "Unknown format %q. Supported: json, csv\n", opts.format)
		return 2
	}
	if opts.output != "" && fs.NArg() > 1 {
		fmt.Fprintln(stderr, "-output can only be used with a single input file")
		return 2
	}

	decoder := extractor.NewDecoder(
		extractor.WithMaxPages(opts.pages),
		extractor.WithOCR(opts.ocr),
		extractor.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, inputPath := range fs.Args() {
		if err := processFile(ctx, decoder, inputPath, opts, stdout, log); err != nil {
			fmt.Fprintf(stderr, "Error processing %s: %v\n", inputPath, err)
			return 1
		}
	}
	return 0
}

// applyConfig fills every flag the user did not pass from the loaded config.
func applyConfig(fs *flag.FlagSet, cfg *config.Config, opts *options) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["pages"] {
		opts.pages = cfg.MaxPages
	}
	if !set["ocr"] {
		opts.ocr = cfg.EnableOCR
	}
	if !set["addr"] {
		opts.addr = cfg.Addr
	}
}

func processFile(ctx context.Context, decoder *extractor.Decoder, inputPath string, opts options, stdout io.Writer, log *slog.Logger) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	text, err := readStatement(ctx, decoder, inputPath)
	if err != nil {
		return err
	}

	st := parser.Parse(text)
	summary := models.Summarize(st)
	log.Info("statement parsed",
		"file", inputPath,
		"detected", summary.Detected,
		"status", summary.Status,
		"transactions", summary.TransactionCount,
	)

	var w interface {
		Write(io.Writer, *models.ParsedStatement) error
		WriteToFile(string, *models.ParsedStatement) error
	}
	if opts.format == "csv" {
		w = &writer.CSVWriter{IncludeHeader: true}
	} else {
		w = &writer.JSONWriter{Indent: true, IncludeSummary: opts.summary}
	}

	if opts.output == "" {
		return w.Write(stdout, st)
	}
	if err := w.WriteToFile(opts.output, st); err != nil {
		return err
	}
	log.Info("output written", "path", opts.output)
	return nil
}

// readStatement returns the flat text of a statement. Text dumps are used
// as they are; anything else goes through the PDF decoder.
func readStatement(ctx context.Context, decoder *extractor.Decoder, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	case ".pdf":
		text, err := decoder.DecodeFile(ctx, path)
		if err != nil {
			return "", fmt.Errorf("PDF extraction failed: %w", err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("expected .pdf or .txt file, got %q", filepath.Ext(path))
	}
}

func serve(cfg *config.Config, opts options, log *slog.Logger) error {
	h := &api.Handler{
		Decoder: extractor.NewDecoder(
			extractor.WithMaxPages(opts.pages),
			extractor.WithOCR(opts.ocr),
			extractor.WithLogger(log),
		),
		Cache:   cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		Limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		Log:     log,
	}
	app := api.NewApp(h, int(cfg.MaxUploadBytes))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", opts.addr, "version", version)
		errc <- app.Listen(opts.addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
