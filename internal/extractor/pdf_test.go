package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDecoder(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		expected int
	}{
		{"default", nil, DefaultMaxPages},
		{"custom", []Option{WithMaxPages(5)}, 5},
		{"zero ignored", []Option{WithMaxPages(0)}, DefaultMaxPages},
		{"negative ignored", []Option{WithMaxPages(-2)}, DefaultMaxPages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(tt.opts...)
			if d.MaxPages() != tt.expected {
				t.Errorf("got %d, want %d", d.MaxPages(), tt.expected)
			}
		})
	}
}

func TestDecode_NotAPDF(t *testing.T) {
	d := NewDecoder()
	data := []byte("this is definitely not a PDF document")

	_, err := d.Decode(context.Background(), bytes.NewReader(data), int64(len(data)))
	if err == nil {
		t.Fatal("expected error for non-PDF input")
	}
	if !errors.Is(err, ErrUnreadable) {
		t.Errorf("expected ErrUnreadable, got %v", err)
	}
}

func TestDecode_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := []byte("%PDF-1.4")
	_, err := NewDecoder().Decode(ctx, bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDecodeFile_Missing(t *testing.T) {
	_, err := NewDecoder().DecodeFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.Is(err, ErrUnreadable) {
		t.Error("a missing file should not be reported as an unreadable document")
	}
}

func TestDecodeFile_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	if err := os.WriteFile(path, []byte{0x00, 0x01, 0x02, 0xff}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewDecoder().DecodeFile(context.Background(), path)
	if !errors.Is(err, ErrUnreadable) {
		t.Errorf("expected ErrUnreadable, got %v", err)
	}
}

func TestJoinPages(t *testing.T) {
	got := joinPages([]string{"Page one", "", "Page two"})
	want := "Page one\nPage two\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Total   Balance:\n$542.10", "Total Balance: $542.10"},
		{"  leading and trailing  ", "leading and trailing"},
		{"\t\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := flatten(tt.input); got != tt.expected {
				t.Errorf("flatten(%q): got %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestJoinRows(t *testing.T) {
	rows := map[int][]glyph{
		700: {{x: 72, s: "D"}, {x: 78, s: "u"}, {x: 84, s: "e"}, {x: 300, s: "02/15/2025"}},
		720: {{x: 84, s: "l"}, {x: 72, s: "T"}, {x: 76, s: "o"}, {x: 80, s: "t"}, {x: 82, s: "a"}},
	}

	got := joinRows(rows)
	want := "Total Due 02/15/2025"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIsReadableText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"statement text", "Account Number **** 1234 Payment Due Date: 02/15/2025 Total Balance: $542.10", true},
		{"too short", "Total Balance: $1.00", false},
		{"garbage", strings.Repeat("éèêë", 30), false},
		{"no statement words", strings.Repeat("lorem ipsum dolor sit ", 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReadableText(tt.input); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

// buildPDF writes a minimal PDF with one page per entry. Each string of a
// page is its own text object placed with Tm on a shared baseline, 228pt
// apart, so every reader sees the same positions.
func buildPDF(pages [][]string) []byte {
	n := 3 + 2*len(pages)
	offsets := make([]int, n+1)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	obj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, words := range pages {
		pageNum := 4 + 2*i
		var content strings.Builder
		for j, w := range words {
			fmt.Fprintf(&content, "BT /F1 12 Tf 1 0 0 1 %d 720 Tm (%s) Tj ET\n", 72+228*j, w)
		}
		obj(pageNum, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageNum+1))
		obj(pageNum+1, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", n+1)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", n+1, xref)
	return buf.Bytes()
}

var fourPageStatement = [][]string{
	{"Card Statement", "page one"},
	{"Card Statement", "page two"},
	{"Card Statement", "page three"},
	{"Card Statement", "page four"},
}

func TestLibraryMethods(t *testing.T) {
	data := buildPDF(fourPageStatement)
	want := []string{
		"Card Statement page one",
		"Card Statement page two",
		"Card Statement page three",
	}

	for _, m := range libraryMethods {
		t.Run(m.name, func(t *testing.T) {
			pages, err := m.run(context.Background(), bytes.NewReader(data), int64(len(data)), DefaultMaxPages)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(pages) != len(want) {
				t.Fatalf("got %d pages %q, want %d", len(pages), pages, len(want))
			}
			for i := range want {
				if pages[i] != want[i] {
					t.Errorf("page %d: got %q, want %q", i+1, pages[i], want[i])
				}
			}
		})
	}
}

func TestDecode_PageCap(t *testing.T) {
	data := buildPDF(fourPageStatement)

	tests := []struct {
		name     string
		opts     []Option
		expected string
	}{
		{
			"default cap",
			nil,
			"Card Statement page one\nCard Statement page two\nCard Statement page three\n",
		},
		{
			"raised cap",
			[]Option{WithMaxPages(10)},
			"Card Statement page one\nCard Statement page two\nCard Statement page three\nCard Statement page four\n",
		},
		{
			"single page is returned even though it is short",
			[]Option{WithMaxPages(1)},
			"Card Statement page one\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDecoder(tt.opts...).Decode(context.Background(), bytes.NewReader(data), int64(len(data)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDecodeFile_ValidPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.pdf")
	if err := os.WriteFile(path, buildPDF(fourPageStatement), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewDecoder().DecodeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(got, "\n") != DefaultMaxPages || !strings.HasSuffix(got, "\n") {
		t.Errorf("expected %d newline-terminated pages, got %q", DefaultMaxPages, got)
	}
	if strings.Contains(got, "page four") {
		t.Errorf("page beyond the cap was decoded: %q", got)
	}
}
