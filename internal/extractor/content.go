package extractor

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/dslipak/pdf"
)

// glyph is one positioned piece of text from a content stream.
type glyph struct {
	x float64
	s string
}

// columnGap is the horizontal distance, in points, treated as a word break
// between consecutive glyphs of a row.
const columnGap = 15

// extractByContent walks the raw content stream with a second PDF reader.
// It copes with some files whose font tables the first library rejects.
// Glyphs are grouped into rows by Y and ordered by X.
func extractByContent(ctx context.Context, r io.ReaderAt, size int64, maxPages int) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("content reader crashed: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	n := min(reader.NumPage(), maxPages)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows := make(map[int][]glyph)
		for _, t := range page.Content().Text {
			y := int(math.Round(t.Y))
			rows[y] = append(rows[y], glyph{x: t.X, s: t.S})
		}
		pages = append(pages, joinRows(rows))
	}
	return pages, nil
}

// joinRows orders rows top to bottom (PDF Y grows upwards) and flattens
// them into one line of text.
func joinRows(rows map[int][]glyph) string {
	ys := make([]int, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	lines := make([]string, 0, len(ys))
	for _, y := range ys {
		lines = append(lines, joinGlyphs(rows[y]))
	}
	return flatten(strings.Join(lines, " "))
}

// joinGlyphs concatenates a row's glyphs left to right, inserting a space
// wherever two glyphs sit further apart than columnGap.
func joinGlyphs(glyphs []glyph) string {
	sort.SliceStable(glyphs, func(a, b int) bool {
		return glyphs[a].x < glyphs[b].x
	})

	var b strings.Builder
	for i, g := range glyphs {
		if i > 0 && g.x-glyphs[i-1].x > columnGap {
			b.WriteByte(' ')
		}
		b.WriteString(g.s)
	}
	return b.String()
}
