package converter

import (
	"context"
	"time"

	"html2pdf/internal/domain"
	"html2pdf/internal/infra/logging"
	"html2pdf/internal/infra/stats"
)

// Converter runs one conversion per call on a freshly acquired rendering
// context and always releases that context before returning.
type Converter struct {
	engine  domain.RenderingEngine
	stats   stats.Recorder
	timeout time.Duration
}

// New returns a Converter. A nil recorder falls back to in-memory counters;
// a non-positive timeout leaves conversions bounded only by the caller's ctx.
func New(engine domain.RenderingEngine, rec stats.Recorder, timeout time.Duration) *Converter {
	if rec == nil {
		rec = stats.NewMemory()
	}
	return &Converter{engine: engine, stats: rec, timeout: timeout}
}

// Stats exposes the recorder for the stats endpoint.
func (c *Converter) Stats() stats.Recorder {
	return c.stats
}

// Convert renders req into a PDF. Every failure is a *domain.RenderingFailure.
func (c *Converter) Convert(ctx context.Context, req domain.ConversionRequest) (*domain.RenderResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	rc, err := c.engine.Acquire(ctx)
	if err != nil {
		c.record(ctx, stats.FailedAcquire)
		return nil, &domain.RenderingFailure{Stage: domain.StageAcquire, Err: err}
	}
	c.record(ctx, stats.Acquired)
	defer c.release(rc)

	if err := rc.Load(ctx, req.Content); err != nil {
		c.record(ctx, stats.FailedLoad)
		return nil, &domain.RenderingFailure{Stage: domain.StageLoad, Err: err}
	}

	buf, err := rc.Print(ctx, PrintConfigFor(req))
	if err != nil {
		c.record(ctx, stats.FailedPrint)
		return nil, &domain.RenderingFailure{Stage: domain.StagePrint, Err: err}
	}

	c.record(ctx, stats.Converted)
	return &domain.RenderResult{Data: buf, ContentType: domain.ContentTypePDF}, nil
}

// PrintConfigFor maps a normalized request onto the renderer's print
// configuration. Background graphics and CSS page size are always on.
func PrintConfigFor(req domain.ConversionRequest) domain.PrintConfig {
	return domain.PrintConfig{
		Format:            req.PageSize,
		Margins:           req.Margins,
		PrintBackground:   true,
		Scale:             req.Scale,
		PreferCSSPageSize: true,
	}
}

func (c *Converter) release(rc domain.RenderingContext) {
	if err := rc.Release(); err != nil {
		logging.Warn("Rendering context release failed", "error", err)
	}
	// Counted even when cleanup reported an error: the context is gone either way.
	c.record(context.Background(), stats.Released)
}

func (c *Converter) record(ctx context.Context, ev stats.Event) {
	// The request ctx may already be expired; counters must still land.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := c.stats.Incr(ctx, ev); err != nil {
		logging.Warn("Engine stats update failed", "event", string(ev), "error", err)
	}
}
