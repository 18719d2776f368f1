// Package exporter copies parameters from a store into CSV rows.
package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/nvinuesa/paramcsv/internal/model"
	"github.com/nvinuesa/paramcsv/internal/paramstore"
)

// Source is the read side of a parameter store. *paramstore.Store
// satisfies it.
type Source interface {
	List(ctx context.Context, spec string, mode paramstore.Mode) ([]*model.Record, error)
	Value(ctx context.Context, name string, decrypt bool) (string, error)
	Labels(ctx context.Context, name string, version int64) ([]string, error)
}

// RowWriter receives exported records. *csvfile.Writer satisfies it.
type RowWriter interface {
	Write(r *model.Record) error
}

// Options configures an export run.
type Options struct {
	// Specs are exact names or path prefixes, processed in order.
	Specs []string
	// Mode selects how every spec is matched.
	Mode paramstore.Mode
	// WithDecryption fetches SecureString values in plaintext.
	WithDecryption bool
	// WithLabels fills the Labels column from the current version's labels.
	WithLabels bool
}

// Validate checks the options before any I/O.
func (o Options) Validate() error {
	if len(o.Specs) == 0 {
		return &model.ErrUsage{Details: "at least one PARAMETER is required"}
	}
	for _, spec := range o.Specs {
		if spec == "" {
			return &model.ErrUsage{Details: "PARAMETER cannot be empty"}
		}
	}
	return nil
}

// Summary reports what an export run did.
type Summary struct {
	Specs   int
	Records int
}

// Exporter runs exports against a single source.
type Exporter struct {
	src    Source
	logger *slog.Logger
}

// New creates an Exporter. A nil logger discards diagnostics.
func New(src Source, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{src: src, logger: logger}
}

// Enumerate lists the parameters matching spec, without values. An empty
// result is an *paramstore.ErrNotFound.
func (e *Exporter) Enumerate(ctx context.Context, spec string, mode paramstore.Mode) ([]*model.Record, error) {
	records, err := e.src.List(ctx, spec, mode)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &paramstore.ErrNotFound{Spec: spec, Mode: mode}
	}
	e.logger.Debug("listed parameters", "spec", spec, "mode", mode.String(), "count", len(records))
	return records, nil
}

// Export writes every record matching opts.Specs to w, in spec order and
// then listing order. The first error aborts the run; rows already written
// stay written.
func (e *Exporter) Export(ctx context.Context, w RowWriter, opts Options) (Summary, error) {
	var summary Summary
	if err := opts.Validate(); err != nil {
		return summary, err
	}

	policy := model.ExportPolicy()
	for _, spec := range opts.Specs {
		records, err := e.Enumerate(ctx, spec, opts.Mode)
		if err != nil {
			return summary, err
		}
		summary.Specs++

		for _, rec := range records {
			if err := e.fill(ctx, rec, opts); err != nil {
				return summary, err
			}
			policy.Apply(rec)
			if err := w.Write(rec); err != nil {
				return summary, fmt.Errorf("failed to write %s: %w", rec.Name(), err)
			}
			summary.Records++
			e.logger.Debug("exported parameter", "name", rec.Name())
		}
	}

	return summary, nil
}

// fill adds the value, and optionally the labels, to a listed record.
func (e *Exporter) fill(ctx context.Context, rec *model.Record, opts Options) error {
	value, err := e.src.Value(ctx, rec.Name(), opts.WithDecryption)
	if err != nil {
		return err
	}
	rec.Set(model.FieldValue, value)

	if !opts.WithLabels {
		return nil
	}

	version, err := strconv.ParseInt(rec.Value(model.FieldVersion), 10, 64)
	if err != nil {
		return fmt.Errorf("parameter %s has no usable version: %w", rec.Name(), err)
	}
	labels, err := e.src.Labels(ctx, rec.Name(), version)
	if err != nil {
		return err
	}
	encoded, err := model.EncodeLabels(labels)
	if err != nil {
		return err
	}
	rec.Set(model.FieldLabels, encoded)
	return nil
}
