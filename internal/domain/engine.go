package domain

import "context"

// PrintConfig is the physical layout handed to the print operation.
// Format and margins are passed through as received; the renderer decides
// whether it understands them.
type PrintConfig struct {
	Format            string
	Margins           Margins
	PrintBackground   bool
	Scale             float64
	PreferCSSPageSize bool
}

// RenderingEngine creates isolated rendering contexts.
type RenderingEngine interface {
	Acquire(ctx context.Context) (RenderingContext, error)
}

// RenderingContext is one isolated renderer instance, owned by a single
// conversion. Release must be safe to call more than once.
type RenderingContext interface {
	Load(ctx context.Context, html string) error
	Print(ctx context.Context, cfg PrintConfig) ([]byte, error)
	Release() error
}
