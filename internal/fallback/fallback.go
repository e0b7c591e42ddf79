// Package fallback tries an ordered list of data sources until one answers.
//
// A source is attempted once, with no retries. A failure is logged and the
// next source is tried; a source that reports itself unconfigured is skipped
// without being called. When every source fails the result is an empty
// collection, never an error: data loading must not break the page.
package fallback

import (
	"context"
	"log/slog"
)

// Source is one tier in a fallback chain.
type Source[T any] interface {
	// Name identifies the source in logs and in Outcome.Served.
	Name() string
	// Configured reports whether the source has what it needs to be called.
	// It must be cheap and must not perform I/O.
	Configured() bool
	// FetchAll returns the whole collection. An empty result is a success.
	FetchAll(ctx context.Context) ([]T, error)
}

// FuncSource adapts a plain function into a Source.
type FuncSource[T any] struct {
	SourceName string
	Ready      bool
	Fetch      func(ctx context.Context) ([]T, error)
}

// FromFunc returns a configured Source backed by fetch.
func FromFunc[T any](name string, fetch func(ctx context.Context) ([]T, error)) *FuncSource[T] {
	return &FuncSource[T]{SourceName: name, Ready: true, Fetch: fetch}
}

func (f *FuncSource[T]) Name() string     { return f.SourceName }
func (f *FuncSource[T]) Configured() bool { return f.Ready && f.Fetch != nil }

func (f *FuncSource[T]) FetchAll(ctx context.Context) ([]T, error) {
	return f.Fetch(ctx)
}

// Attempt records what happened to one source during a Run.
type Attempt struct {
	Source  string
	Skipped bool  // not configured, never called
	Err     error // nil on success
}

// Outcome is the result of a Run. Records is never nil.
type Outcome[T any] struct {
	Records  []T
	Served   string // name of the source that answered, "" if none did
	Attempts []Attempt
}

// Degraded reports whether any source was skipped or failed.
func (o Outcome[T]) Degraded() bool {
	for _, a := range o.Attempts {
		if a.Skipped || a.Err != nil {
			return true
		}
	}
	return false
}

// OK reports whether some source answered.
func (o Outcome[T]) OK() bool {
	return o.Served != ""
}

// Executor runs fallback chains for one record type.
type Executor[T any] struct {
	logger *slog.Logger
}

// New creates an Executor that logs skipped and failed sources to logger.
func New[T any](logger *slog.Logger) *Executor[T] {
	return &Executor[T]{logger: logger}
}

// Run tries sources in order and returns the first successful result.
//
// A cancelled context stops the chain before the next call; the outcome is
// then empty, exactly as if every remaining source had failed.
func (e *Executor[T]) Run(ctx context.Context, sources ...Source[T]) Outcome[T] {
	out := Outcome[T]{Records: []T{}}

	for _, src := range sources {
		name := src.Name()

		if !src.Configured() {
			e.logger.Warn("data source not configured, skipping",
				slog.String("source", name),
			)
			out.Attempts = append(out.Attempts, Attempt{Source: name, Skipped: true})
			continue
		}

		if err := ctx.Err(); err != nil {
			out.Attempts = append(out.Attempts, Attempt{Source: name, Err: err})
			return out
		}

		records, err := src.FetchAll(ctx)
		if err != nil {
			e.logger.Warn("data source failed, falling back",
				slog.String("source", name),
				slog.String("error", err.Error()),
			)
			out.Attempts = append(out.Attempts, Attempt{Source: name, Err: err})
			continue
		}

		out.Attempts = append(out.Attempts, Attempt{Source: name})
		out.Served = name
		if records != nil {
			out.Records = records
		}
		return out
	}

	if len(sources) > 0 {
		e.logger.Warn("all data sources failed, returning empty collection",
			slog.Int("sources", len(sources)),
		)
	}
	return out
}
