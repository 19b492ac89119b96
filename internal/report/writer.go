// Package report writes experiment records to the console, files and GreptimeDB.
package report

import "energest-report/internal/energest"

// RecordWriter consumes experiment records.
type RecordWriter interface {
	Write(rec energest.ExperimentRecord) error
}

type batchWriter interface {
	WriteBatch(recs []energest.ExperimentRecord) error
}

// WriteAll sends recs to w, using its batch path when it has one.
func WriteAll(w RecordWriter, recs []energest.ExperimentRecord) error {
	if bw, ok := w.(batchWriter); ok {
		return bw.WriteBatch(recs)
	}
	for _, r := range recs {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// scanned reports whether the node contributed energest samples to the record.
func scanned(e energest.NodeEnergy) bool { return e.PeriodSeconds > 0 }
