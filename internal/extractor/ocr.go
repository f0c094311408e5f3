package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// IsOCRAvailable reports whether pdftoppm (poppler-utils) and tesseract are
// both installed.
func IsOCRAvailable() bool {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return false
	}
	_, err := exec.LookPath("tesseract")
	return err == nil
}

// extractWithOCR renders the first maxPages pages to images and runs
// Tesseract on each. It handles scanned statements with no text layer.
func extractWithOCR(ctx context.Context, path string, maxPages int) ([]string, error) {
	if !IsOCRAvailable() {
		return nil, fmt.Errorf("OCR requires pdftoppm (poppler-utils) and tesseract (tesseract-ocr)")
	}

	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// 300 DPI keeps small statement print legible for tesseract.
	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png",
		"-f", "1", "-l", strconv.Itoa(maxPages), path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	images, err := pageImages(tmpDir)
	if err != nil {
		return nil, err
	}

	var pages []string
	for _, img := range images {
		// PSM 4: a single column of text of variable sizes.
		out, err := exec.CommandContext(ctx, "tesseract", img, "stdout", "-l", "eng", "--psm", "4").Output()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if text := flatten(string(out)); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("tesseract OCR produced no text from %d page images", len(images))
	}
	return pages, nil
}

// pageImages lists the PNGs pdftoppm wrote, in page order.
func pageImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	var images []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(images)

	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}
	return images, nil
}
