package chrome

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"html2pdf/internal/config"
	"html2pdf/internal/domain"
)

// Launcher is the chromedp RenderingEngine. Each Acquire starts a dedicated
// headless Chrome process with its own throwaway profile directory.
type Launcher struct {
	chromePath  string
	flags       []string
	userDataDir string
	settle      time.Duration
	paperSizes  map[string]config.PaperSize
}

// NewLauncher captures the process-wide browser settings from cfg.
func NewLauncher(cfg config.Config) *Launcher {
	return &Launcher{
		chromePath:  cfg.Render.ChromePath,
		flags:       append([]string(nil), cfg.Render.BrowserFlags...),
		userDataDir: cfg.Render.UserDataDir,
		settle:      cfg.Render.SettleWindow,
		paperSizes:  cfg.Render.PaperSizes,
	}
}

// Acquire launches Chrome and opens its first tab. Launch is bounded by ctx;
// the browser itself lives until Release.
func (l *Launcher) Acquire(ctx context.Context) (domain.RenderingContext, error) {
	profileDir, err := createProfileDir(l.userDataDir)
	if err != nil {
		return nil, err
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), l.allocatorOptions(profileDir)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		profileDir:  profileDir,
		settle:      l.settle,
		paperSizes:  l.paperSizes,
		tracker:     newIdleTracker(),
	}

	// The first Run allocates the browser. It must not carry the request
	// deadline, or the deadline would also bound the browser's lifetime.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()

	select {
	case err = <-started:
	case <-ctx.Done():
		// Stop the launch first; Release must not race the running allocation.
		tabCancel()
		allocCancel()
		<-started
		_ = s.Release()
		return nil, fmt.Errorf("launch chrome: %w", ctx.Err())
	}
	if err != nil {
		_ = s.Release()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	chromedp.ListenTarget(tabCtx, s.onEvent)
	return s, nil
}

func (l *Launcher) allocatorOptions(profileDir string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profileDir),
		// Force software rendering and avoid Vulkan/ANGLE issues in minimal container environments.
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-gpu-compositing", true),
		chromedp.Flag("disable-features", "Vulkan,UseSkiaRenderer"),
		chromedp.Flag("use-gl", "swiftshader"),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if l.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(l.chromePath))
	}
	for _, f := range l.flags {
		name, value := parseFlag(f)
		if name == "" {
			continue
		}
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

// parseFlag turns "--name" into (name, true) and "--name=value" into (name, value).
func parseFlag(f string) (string, any) {
	f = strings.TrimLeft(strings.TrimSpace(f), "-")
	if name, value, ok := strings.Cut(f, "="); ok {
		return name, value
	}
	return f, true
}

// createProfileDir makes a fresh Chrome user-data dir under base (or the system temp dir).
func createProfileDir(base string) (string, error) {
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o700); err != nil {
		return "", fmt.Errorf("cannot create profile base dir: %w", err)
	}
	dir, err := os.MkdirTemp(base, "chromedata-*")
	if err != nil {
		return "", fmt.Errorf("cannot create temp profile dir: %w", err)
	}
	return dir, nil
}
