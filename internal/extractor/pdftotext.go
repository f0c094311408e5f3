package extractor

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// IsPdftotextAvailable reports whether poppler's pdftotext is on PATH.
func IsPdftotextAvailable() bool {
	_, err := exec.LookPath("pdftotext")
	return err == nil
}

// extractWithPdftotext runs pdftotext over the first maxPages pages.
// pdftotext separates pages with a form feed.
func extractWithPdftotext(ctx context.Context, path string, maxPages int) ([]string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-f", "1", "-l", strconv.Itoa(maxPages), path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	var pages []string
	for _, page := range strings.Split(string(out), "\f") {
		if text := flatten(page); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftotext produced no output")
	}
	return pages, nil
}
