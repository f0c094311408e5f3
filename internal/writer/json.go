package writer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// JSONWriter writes a parsed statement as a JSON record. Fields that were
// not detected are left out.
type JSONWriter struct {
	Indent         bool
	IncludeSummary bool
}

// summarized is the record shape when IncludeSummary is set.
type summarized struct {
	Statement *models.ParsedStatement `json:"statement"`
	Summary   models.Summary          `json:"summary"`
}

// WriteToFile writes the statement to a JSON file at the given path.
func (w *JSONWriter) WriteToFile(path string, st *models.ParsedStatement) error {
	return writeFile(path, st, w.Write)
}

// Write encodes the statement, followed by a newline.
func (w *JSONWriter) Write(out io.Writer, st *models.ParsedStatement) error {
	enc := json.NewEncoder(out)
	if w.Indent {
		enc.SetIndent("", "  ")
	}

	var v any = st
	if w.IncludeSummary {
		v = summarized{Statement: st, Summary: models.Summarize(st)}
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
