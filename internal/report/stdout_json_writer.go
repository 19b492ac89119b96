package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"energest-report/internal/energest"
)

// JSONStdoutWriter prints each record as one JSON line.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Write outputs a record in JSON format.
func (w *JSONStdoutWriter) Write(rec energest.ExperimentRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}
