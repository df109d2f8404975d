package chrome

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"html2pdf/internal/config"
	"html2pdf/internal/domain"
)

// Session is one launched browser with a single tab. It is owned by exactly
// one conversion and torn down by Release.
type Session struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	profileDir  string

	settle     time.Duration
	paperSizes map[string]config.PaperSize
	tracker    *idleTracker

	releaseOnce sync.Once
	releaseErr  error
}

// Load replaces the blank tab's document with html and waits until the
// network has been idle for the settle window.
func (s *Session) Load(ctx context.Context, html string) error {
	runCtx, cancel := s.bind(ctx)
	defer cancel()

	err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			s.tracker.reset(time.Now())
			frame, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frame.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}

	if err := waitForNetworkIdle(runCtx, s.tracker, s.settle); err != nil {
		return fmt.Errorf("wait for network idle: %w", err)
	}
	return nil
}

// Print renders the loaded document with cfg.
func (s *Session) Print(ctx context.Context, cfg domain.PrintConfig) ([]byte, error) {
	params, err := printParams(cfg, s.paperSizes)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := s.bind(ctx)
	defer cancel()

	var buf []byte
	err = chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = params.Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	if len(buf) == 0 {
		return nil, errors.New("print to pdf: empty output")
	}
	return buf, nil
}

// Release closes the browser, stops the allocator and removes the profile
// directory. Calls after the first are no-ops returning the first result.
func (s *Session) Release() error {
	s.releaseOnce.Do(func() {
		var errs []error
		if err := chromedp.Cancel(s.tabCtx); err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		s.tabCancel()
		s.allocCancel()
		if s.profileDir != "" {
			if err := os.RemoveAll(s.profileDir); err != nil {
				errs = append(errs, fmt.Errorf("remove profile dir: %w", err))
			}
		}
		s.releaseErr = errors.Join(errs...)
	})
	return s.releaseErr
}

// bind derives a chromedp context for this tab that is also cancelled when ctx is.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *Session) onEvent(ev any) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		s.tracker.started(string(e.RequestID), time.Now())
	case *network.EventLoadingFinished:
		s.tracker.finished(string(e.RequestID), time.Now())
	case *network.EventLoadingFailed:
		s.tracker.finished(string(e.RequestID), time.Now())
	}
}
