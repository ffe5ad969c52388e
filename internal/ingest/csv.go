// Package ingest reads company relationship datasets into a graph.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/efebarandurmaz/reach/internal/graph"
	"github.com/efebarandurmaz/reach/internal/observability"
)

// Column layout of the links dataset.
const (
	colID = iota
	colTailName
	colHeadName
	colKind
	colUpdatedAt
	colTailDomain
	colHeadDomain

	minFields = 8
)

// missingValue marks an absent field in the dataset.
const missingValue = "N/A"

// SkipReason classifies why a row was dropped.
type SkipReason string

const (
	SkipShortRow     SkipReason = "short_row"
	SkipMissingValue SkipReason = "missing_value"
	SkipUnknownKind  SkipReason = "unknown_kind"
	SkipMalformed    SkipReason = "malformed"
	SkipInvalid      SkipReason = "invalid"
)

// Report summarizes a dataset read.
type Report struct {
	Rows     int                `json:"rows"`
	Accepted int                `json:"accepted"`
	Skipped  map[SkipReason]int `json:"skipped,omitempty"`
}

// SkippedTotal returns the number of rows dropped for any reason.
func (r Report) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}

func (r *Report) skip(reason SkipReason) {
	if r.Skipped == nil {
		r.Skipped = make(map[SkipReason]int)
	}
	r.Skipped[reason]++
}

// Reader parses the links CSV format.
type Reader struct {
	logger *slog.Logger
}

// NewReader returns a Reader logging to logger, or slog.Default() when nil.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// ReadFile opens path and reads it.
func (r *Reader) ReadFile(ctx context.Context, path string) (*graph.Graph, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return r.read(ctx, f, path)
}

// Read parses a header row followed by relationship records. Rows that are
// short, contain "N/A", carry an unrecognized type or fail to parse are
// skipped and counted in the report.
func (r *Reader) Read(ctx context.Context, src io.Reader) (*graph.Graph, Report, error) {
	return r.read(ctx, src, "stream")
}

func (r *Reader) read(ctx context.Context, src io.Reader, name string) (g *graph.Graph, rep Report, err error) {
	ctx, span := observability.StartIngestSpan(ctx, name)
	defer func() {
		observability.RecordIngestResult(span, rep.Accepted, rep.SkippedTotal(), g.Len())
		observability.RecordError(span, err)
		span.End()
	}()

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return graph.NewBuilder().Build(), rep, nil
		}
		return nil, rep, fmt.Errorf("read header: %w", err)
	}

	b := graph.NewBuilder()
	for {
		if rep.Rows%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, rep, err
			}
		}

		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rep.Rows++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				r.logger.Debug("skipping malformed row", "line", perr.Line, "error", perr.Err)
				rep.skip(SkipMalformed)
				continue
			}
			return nil, rep, fmt.Errorf("read row %d: %w", rep.Rows, err)
		}

		rel, reason, ok := parseRecord(fields)
		if !ok {
			r.logger.Debug("skipping row", "row", rep.Rows, "reason", reason)
			rep.skip(reason)
			continue
		}
		if err := b.Add(rel); err != nil {
			r.logger.Debug("skipping row", "row", rep.Rows, "error", err)
			rep.skip(SkipInvalid)
			continue
		}
		rep.Accepted++
	}

	g = b.Build()
	r.logger.Info("dataset read",
		"source", name,
		"rows", rep.Rows,
		"accepted", rep.Accepted,
		"skipped", rep.SkippedTotal(),
		"companies", g.Len(),
	)
	return g, rep, nil
}

// parseRecord converts one CSV record into a relationship.
func parseRecord(fields []string) (graph.Relationship, SkipReason, bool) {
	if len(fields) < minFields {
		return graph.Relationship{}, SkipShortRow, false
	}
	for _, f := range fields {
		if f == missingValue {
			return graph.Relationship{}, SkipMissingValue, false
		}
	}
	kind := graph.ParseKind(fields[colKind])
	if kind == graph.KindUnknown {
		return graph.Relationship{}, SkipUnknownKind, false
	}
	return graph.Relationship{
		ID:        fields[colID],
		Tail:      graph.Company{Name: fields[colTailName], Domain: fields[colTailDomain]},
		Head:      graph.Company{Name: fields[colHeadName], Domain: fields[colHeadDomain]},
		Kind:      kind,
		UpdatedAt: fields[colUpdatedAt],
	}, "", true
}
