package energest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"energest-report/internal/logging"
)

// FileObserver is an optional extension of Observer notified once per analyzed file.
type FileObserver interface {
	ObserveFile(d time.Duration, err error)
}

// Analyzer turns simulator log files into experiment records.
type Analyzer struct {
	Variant Variant
	// Cutoff is the simulated execution time in seconds. Zero uses the variant default.
	Cutoff     float64
	Classifier *Classifier
	Observer   Observer
	// RunID tags every record produced by this analyzer.
	RunID string
}

// NewAnalyzer returns an Analyzer with default patterns and a fresh run id.
func NewAnalyzer(variant Variant) *Analyzer {
	return &Analyzer{
		Variant:    variant,
		Classifier: DefaultClassifier(),
		RunID:      uuid.NewString(),
	}
}

func (a *Analyzer) variant() Variant {
	if a.Variant == "" {
		return VariantFull
	}
	return a.Variant
}

func (a *Analyzer) cutoff() float64 {
	if a.Cutoff > 0 {
		return a.Cutoff
	}
	return a.variant().DefaultCutoff()
}

func (a *Analyzer) classifier() *Classifier {
	if a.Classifier == nil {
		return DefaultClassifier()
	}
	return a.Classifier
}

func (a *Analyzer) observer() Observer {
	if a.Observer == nil {
		return nopObserver{}
	}
	return a.Observer
}

// AnalyzeFile scans the file at path and builds its record.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (rec ExperimentRecord, err error) {
	start := time.Now()
	if fo, ok := a.Observer.(FileObserver); ok {
		defer func() { fo.ObserveFile(time.Since(start), err) }()
	}

	name := filepath.Base(path)
	logging.FromContext(ctx).Info("scanning log", "file", name, "variant", a.variant())

	f, err := os.Open(path)
	if err != nil {
		return ExperimentRecord{}, err
	}
	defer f.Close()

	counters, err := a.Scan(ctx, name, f)
	if err != nil {
		return ExperimentRecord{}, err
	}
	meta, err := ParseFilename(name)
	if err != nil {
		return ExperimentRecord{}, err
	}
	rec, err = BuildRecord(meta, counters, a.variant())
	if err != nil {
		return ExperimentRecord{}, fmt.Errorf("%s: %w", name, err)
	}
	rec.RunID = a.RunID
	rec.File = name
	return rec, nil
}

// Walk analyzes every regular file in dir in lexical order and hands each record to fn.
// The first fatal error, from analysis or from fn, stops the walk.
func (a *Analyzer) Walk(ctx context.Context, dir string, fn func(ExperimentRecord) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := a.AnalyzeFile(ctx, filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// AnalyzeDir collects the records of every file in dir, see Walk.
func (a *Analyzer) AnalyzeDir(ctx context.Context, dir string) ([]ExperimentRecord, error) {
	var recs []ExperimentRecord
	err := a.Walk(ctx, dir, func(r ExperimentRecord) error {
		recs = append(recs, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}
