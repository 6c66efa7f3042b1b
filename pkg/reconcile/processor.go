package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/haku-324897/askul-navilion/pkg/scraper"
)

// ErrNoData is returned when a batch produced no usable primary record.
var ErrNoData = errors.New("no data could be retrieved")

// PrimarySource extracts records from the primary retailer.
type PrimarySource interface {
	ExtractPrimary(ctx context.Context, url string) scraper.PrimaryRecord
}

// SecondarySource searches and extracts records from the wholesaler.
type SecondarySource interface {
	Handshake(ctx context.Context) error
	SearchURL(barcode string) string
	FindCandidates(ctx context.Context, barcode string) []string
	ExtractSecondary(ctx context.Context, code string) scraper.SecondaryRecord
}

// ProgressSink receives human-readable status lines. It is for visibility
// only; nothing reads it back.
type ProgressSink interface {
	Status(msg string)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(msg string)

func (f SinkFunc) Status(msg string) { f(msg) }

// LogSink writes status lines to a logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Status(msg string) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info(msg)
}

// Config configures a Processor.
type Config struct {
	// Workers is the number of queries processed in parallel. Default: 2.
	Workers int
	// ProductURLTemplate expands bare identifiers; it contains "{id}".
	ProductURLTemplate string
}

// Processor runs the per-query pipeline (primary fetch, barcode search,
// secondary fetch, reconcile) over a batch with a bounded worker pool.
type Processor struct {
	primary   PrimarySource
	secondary SecondarySource
	cfg       Config
	sink      ProgressSink
	logger    *slog.Logger
}

// NewProcessor creates a Processor. A nil sink logs to logger; a nil logger
// means slog.Default().
func NewProcessor(primary PrimarySource, secondary SecondarySource, cfg Config, sink ProgressSink, logger *slog.Logger) *Processor {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = LogSink{Logger: logger}
	}
	return &Processor{
		primary:   primary,
		secondary: secondary,
		cfg:       cfg,
		sink:      sink,
		logger:    logger,
	}
}

// ProcessQueries reconciles every query and returns the rows in input
// order. A failing query only affects its own row. ErrNoData is returned,
// along with the rows, when no query yielded a primary record.
func (p *Processor) ProcessQueries(ctx context.Context, queries []string) ([]ReconciledRow, error) {
	if len(queries) == 0 {
		return nil, ErrNoData
	}

	if err := p.secondary.Handshake(ctx); err != nil {
		p.logger.Warn("secondary handshake failed", "error", err)
		p.sink.Status(fmt.Sprintf("secondary site unreachable, lookups will likely fail: %v", err))
	}

	rows := make([]ReconciledRow, len(queries))
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			rows[i] = p.process(ctx, q)
			n := done.Add(1)
			p.sink.Status(fmt.Sprintf("processed %d / %d", n, len(queries)))
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range rows {
		if r.Primary.Error == "" {
			return rows, nil
		}
	}
	return rows, ErrNoData
}

func (p *Processor) process(ctx context.Context, query string) (row ReconciledRow) {
	url := ExpandQuery(query, p.cfg.ProductURLTemplate)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("query panicked", "url", url, "panic", r)
			row = ReconciledRow{Primary: scraper.PrimaryRecord{URL: url, Error: fmt.Sprintf("internal error: %v", r)}}
		}
	}()

	primary := p.primary.ExtractPrimary(ctx, url)
	if primary.Error != "" {
		p.sink.Status(fmt.Sprintf("primary fetch failed: %s (%s)", url, primary.Error))
	}

	row = Reconcile(primary, p.lookup(ctx, primary.Barcode))
	p.logger.Debug("query reconciled",
		"url", url,
		"barcode", primary.Barcode,
		"status", row.Status.String(),
		"judgment", row.Judgment.String(),
	)
	return row
}

func (p *Processor) lookup(ctx context.Context, barcode string) Lookup {
	if barcode == "" {
		return Lookup{}
	}

	l := Lookup{
		SearchURL:  p.secondary.SearchURL(barcode),
		Candidates: p.secondary.FindCandidates(ctx, barcode),
	}
	if len(l.Candidates) == 0 {
		return l
	}
	code, ok := scraper.ProductCode(l.Candidates[0])
	if !ok {
		return l
	}

	rec := p.secondary.ExtractSecondary(ctx, code)
	if rec.Error != "" {
		p.sink.Status(fmt.Sprintf("secondary fetch failed: %s (%s)", code, rec.Error))
	}
	l.Record = &rec
	return l
}
