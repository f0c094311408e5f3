package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxPages is how many leading pages of a statement are decoded.
// Statement summaries and the first transactions sit on the first pages.
const DefaultMaxPages = 3

// ErrUnreadable means no text at all could be pulled out of the document.
var ErrUnreadable = errors.New("failed to parse file; ensure it is a valid statement")

// Decoder turns a PDF statement into flat text: the words of each page are
// joined with single spaces and every page is terminated by a newline.
// A Decoder holds only configuration and is safe for concurrent use.
type Decoder struct {
	maxPages int
	ocr      bool
	log      *slog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithMaxPages caps the number of decoded pages. Values below 1 are ignored.
func WithMaxPages(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxPages = n
		}
	}
}

// WithOCR enables the tesseract fallback for image-only statements.
func WithOCR(enabled bool) Option {
	return func(d *Decoder) { d.ocr = enabled }
}

// WithLogger sets the logger used for per-method diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDecoder returns a Decoder with the given options applied.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		maxPages: DefaultMaxPages,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MaxPages reports the page cap.
func (d *Decoder) MaxPages() int { return d.maxPages }

// pageMethod is one way of getting page text out of a document.
type pageMethod struct {
	name string
	run  func(ctx context.Context, r io.ReaderAt, size int64, maxPages int) ([]string, error)
}

// libraryMethods run in-process, best layout preservation first.
var libraryMethods = []pageMethod{
	{"rows", extractByRow},
	{"plaintext", extractByPagePlainText},
	{"content", extractByContent},
}

// DecodeFile reads the statement at path.
func (d *Decoder) DecodeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return d.decode(ctx, f, info.Size(), path)
}

// Decode reads a statement held in memory or any other random-access source.
func (d *Decoder) Decode(ctx context.Context, r io.ReaderAt, size int64) (string, error) {
	return d.decode(ctx, r, size, "")
}

func (d *Decoder) decode(ctx context.Context, r io.ReaderAt, size int64, path string) (string, error) {
	var fallback []string

	try := func(name string, pages []string, err error) bool {
		if err != nil {
			d.log.Debug("text method failed", "method", name, "error", err)
			return false
		}
		if isReadableText(pages) {
			d.log.Debug("text method succeeded", "method", name, "pages", len(pages))
			return true
		}
		d.log.Debug("text method returned low quality text", "method", name, "chars", totalTextLen(pages))
		if fallback == nil && totalTextLen(pages) > 0 {
			fallback = pages
		}
		return false
	}

	for _, m := range libraryMethods {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pages, err := m.run(ctx, r, size, d.maxPages)
		if try(m.name, pages, err) {
			return joinPages(pages), nil
		}
	}

	tools := d.externalMethods()
	if len(tools) > 0 {
		if path == "" {
			tmp, cleanup, err := spillToTemp(r, size)
			if err != nil {
				return "", fmt.Errorf("buffer document: %w", err)
			}
			defer cleanup()
			path = tmp
		}
		for _, m := range tools {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			pages, err := m.run(ctx, path, d.maxPages)
			if try(m.name, pages, err) {
				return joinPages(pages), nil
			}
		}
	}

	// Low-signal text is still text; the field extractors decide what it is worth.
	if fallback != nil {
		return joinPages(fallback), nil
	}
	return "", fmt.Errorf("%w: no text could be decoded from the document", ErrUnreadable)
}

// toolMethod is an external program that works on a file path.
type toolMethod struct {
	name string
	run  func(ctx context.Context, path string, maxPages int) ([]string, error)
}

func (d *Decoder) externalMethods() []toolMethod {
	var tools []toolMethod
	if IsPdftotextAvailable() {
		tools = append(tools, toolMethod{"pdftotext", extractWithPdftotext})
	}
	if d.ocr && IsOCRAvailable() {
		tools = append(tools, toolMethod{"ocr", extractWithOCR})
	}
	return tools
}

func spillToTemp(r io.ReaderAt, size int64) (string, func(), error) {
	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, io.NewSectionReader(r, 0, size)); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return tmp.Name(), cleanup, nil
}

// openLibrary wraps pdf.NewReader; the library panics on some malformed files.
func openLibrary(r io.ReaderAt, size int64) (reader *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("PDF library crashed: %v", rec)
		}
	}()
	return pdf.NewReader(r, size)
}

// extractByRow uses GetTextByRow, which keeps words in reading order.
func extractByRow(ctx context.Context, r io.ReaderAt, size int64, maxPages int) (pages []string, err error) {
	reader, err := openLibrary(r, size)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("PDF library crashed: %v", rec)
		}
	}()

	n := min(reader.NumPage(), maxPages)
	if n == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var words []string
		for _, row := range rows {
			for _, word := range row.Content {
				words = append(words, word.S)
			}
		}
		pages = append(pages, flatten(strings.Join(words, " ")))
	}
	return pages, nil
}

// extractByPagePlainText decodes each page with its own font map.
func extractByPagePlainText(ctx context.Context, r io.ReaderAt, size int64, maxPages int) (pages []string, err error) {
	reader, err := openLibrary(r, size)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("PDF library crashed: %v", rec)
		}
	}()

	n := min(reader.NumPage(), maxPages)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		pages = append(pages, flatten(text))
	}
	return pages, nil
}

// flatten collapses every run of whitespace, newlines included, to one space.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// joinPages terminates every non-empty page with a newline.
func joinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		if p == "" {
			continue
		}
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return b.String()
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
