// Package importer writes CSV rows into a parameter store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nvinuesa/paramcsv/internal/model"
	"github.com/nvinuesa/paramcsv/internal/paramstore"
)

// Sink is the write side of a parameter store. *paramstore.Store satisfies
// it.
type Sink interface {
	Put(ctx context.Context, rec *model.Record, overwrite bool) (int64, error)
	Label(ctx context.Context, name string, version int64, labels []string) error
}

// RowReader yields records until io.EOF. *csvfile.Reader satisfies it.
type RowReader interface {
	Next() (*model.Record, error)
}

// Options configures an import run.
type Options struct {
	// Overwrite replaces parameters that already exist.
	Overwrite bool
	// KeepGoing skips existing parameters and continues past failures.
	KeepGoing bool
	// DryRun reports what would be imported without writing.
	DryRun bool
	// KeyIDOverride replaces the KeyId of every row that has one.
	KeyIDOverride string
	// ClearKMSKey removes KeyId so the store's default key is used.
	ClearKMSKey bool
}

// Validate checks the options before any I/O.
func (o Options) Validate() error {
	if o.Overwrite && o.KeepGoing {
		return &model.ErrUsage{Details: "--overwrite and --keep-going cannot be used together"}
	}
	return nil
}

// Result counts the outcome of every row.
type Result struct {
	Imported int
	Skipped  int
	Failed   int
	Planned  int
}

// AbortError stops an import at the named row. It has already been reported
// on the error stream.
type AbortError struct {
	Name string
	Err  error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("import aborted at %s: %v", e.Name, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// LabelError reports a labelling failure for a parameter version that was
// already written.
type LabelError struct {
	Name    string
	Version int64
	Err     error
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("labelling %s version %d: %v", e.Name, e.Version, e.Err)
}

func (e *LabelError) Unwrap() error {
	return e.Err
}

// IsAbort returns true if the error is an already reported abort.
func IsAbort(err error) bool {
	var abort *AbortError
	return errors.As(err, &abort)
}

// Importer writes rows to a single sink.
type Importer struct {
	sink   Sink
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// New creates an Importer. Status lines go to stdout and stderr; a nil
// logger discards diagnostics.
func New(sink Sink, stdout, stderr io.Writer, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{sink: sink, stdout: stdout, stderr: stderr, logger: logger}
}

// Import processes rows in order. Rows after an abort are never attempted.
func (im *Importer) Import(ctx context.Context, rows RowReader, opts Options) (Result, error) {
	var result Result
	if err := opts.Validate(); err != nil {
		return result, err
	}

	policy := model.ImportPolicy(model.ImportRules{
		KeyIDOverride: opts.KeyIDOverride,
		ClearKMSKey:   opts.ClearKMSKey,
	})

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rec, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, err
		}

		name := rec.Name()
		if opts.DryRun {
			fmt.Fprintf(im.stdout, "DRY-RUN: importing %s \n", name)
			result.Planned++
			continue
		}

		policy.Apply(rec)
		err = im.importOne(ctx, rec, opts.Overwrite)

		switch paramstore.KindOf(err) {
		case paramstore.KindNone:
			fmt.Fprintf(im.stdout, "INFO: import %s \n", name)
			result.Imported++
		case paramstore.KindAlreadyExists:
			if !opts.KeepGoing {
				fmt.Fprintf(im.stderr, "ERROR: failed to import %s as it already exists: specify --overwrite or --keep-going\n", name)
				result.Failed++
				return result, &AbortError{Name: name, Err: err}
			}
			fmt.Fprintf(im.stderr, "WARN: skipping import %s already exists\n", name)
			result.Skipped++
		default:
			var labelErr *LabelError
			if errors.As(err, &labelErr) {
				fmt.Fprintf(im.stderr, "ERROR: imported %s but failed to label it , %s\n", name, paramstore.Message(err))
			} else {
				fmt.Fprintf(im.stderr, "ERROR: failed to import %s , %s\n", name, paramstore.Message(err))
			}
			im.logger.Debug("import failed", "name", name, "kind", paramstore.KindOf(err).String(), "error", err)
			result.Failed++
			if !opts.KeepGoing {
				return result, &AbortError{Name: name, Err: err}
			}
		}
	}

	im.logger.Debug("import finished",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"planned", result.Planned)
	return result, nil
}

// importOne validates, writes, and labels a normalized record.
func (im *Importer) importOne(ctx context.Context, rec *model.Record, overwrite bool) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	labels, err := model.ParseLabels(rec.Value(model.FieldLabels))
	if err != nil {
		return &model.ErrInvalidRecord{Name: rec.Name(), Err: err}
	}

	version, err := im.sink.Put(ctx, rec, overwrite)
	if err != nil {
		return err
	}
	im.logger.Debug("put parameter", "name", rec.Name(), "version", version)

	if len(labels) == 0 {
		return nil
	}
	if err := im.sink.Label(ctx, rec.Name(), version, labels); err != nil {
		return &LabelError{Name: rec.Name(), Version: version, Err: err}
	}
	return nil
}
