package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/insightdelivered/card-statement-parser/internal/models"
)

// CSVWriter writes a parsed statement's transactions as CSV.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the statement to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, st *models.ParsedStatement) error {
	return writeFile(path, st, w.Write)
}

// Write writes the statement in CSV format to the given writer. With
// IncludeHeader set, every detected field is written first as a
// "# Label,value" metadata row.
func (w *CSVWriter) Write(out io.Writer, st *models.ParsedStatement) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader {
		for _, f := range st.Fields() {
			if !f.Detected {
				continue
			}
			if err := writer.Write([]string{"# " + f.Label, f.Value}); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	if err := writer.Write([]string{"Date", "Description", "Amount"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range st.Transactions {
		if err := writer.Write([]string{txn.Date, txn.Description, txn.Amount}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeFile(path string, st *models.ParsedStatement, write func(io.Writer, *models.ParsedStatement) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := write(f, st); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
