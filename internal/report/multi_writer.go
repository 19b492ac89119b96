package report

import "energest-report/internal/energest"

// MultiWriter fans records out to multiple writers.
type MultiWriter struct {
	writers []RecordWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...RecordWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// Write sends a record to all writers.
func (mw *MultiWriter) Write(rec energest.ExperimentRecord) error {
	for _, w := range mw.writers {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends records to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(recs []energest.ExperimentRecord) error {
	for _, w := range mw.writers {
		if err := WriteAll(w, recs); err != nil {
			return err
		}
	}
	return nil
}
