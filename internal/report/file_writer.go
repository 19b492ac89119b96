package report

import (
	"encoding/json"
	"os"

	"energest-report/internal/energest"
)

// FileWriter writes records, and optionally shaped views, to JSONL files.
type FileWriter struct {
	recFile  *os.File
	viewFile *os.File
	recEnc   *json.Encoder
	viewEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. viewsPath may be empty to skip view export.
func NewFileWriter(recordsPath, viewsPath string) (*FileWriter, error) {
	rf, err := os.Create(recordsPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{recFile: rf, recEnc: json.NewEncoder(rf)}
	if viewsPath != "" {
		vf, err := os.Create(viewsPath)
		if err != nil {
			rf.Close()
			return nil, err
		}
		fw.viewFile = vf
		fw.viewEnc = json.NewEncoder(vf)
	}
	return fw, nil
}

// Write logs a single record.
func (f *FileWriter) Write(rec energest.ExperimentRecord) error {
	return f.recEnc.Encode(rec)
}

// WriteBatch logs multiple records.
func (f *FileWriter) WriteBatch(recs []energest.ExperimentRecord) error {
	for _, r := range recs {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// ViewLine is one exported shaped view.
type ViewLine struct {
	Name string `json:"name"`
	Data any    `json:"data"`
}

// WriteView logs a shaped view, if enabled.
func (f *FileWriter) WriteView(name string, data any) error {
	if f.viewEnc == nil {
		return nil
	}
	return f.viewEnc.Encode(ViewLine{Name: name, Data: data})
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.recFile != nil {
		if e := f.recFile.Close(); e != nil {
			err = e
		}
	}
	if f.viewFile != nil {
		if e := f.viewFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
