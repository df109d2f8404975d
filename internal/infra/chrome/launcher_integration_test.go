package chrome

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"os/exec"
	"testing"
	"time"

	"html2pdf/internal/converter"
	"html2pdf/internal/domain"
	"html2pdf/internal/infra/stats"
)

// chromeBinary finds a local Chrome/Chromium; integration tests skip without one.
func chromeBinary(t *testing.T) string {
	t.Helper()
	if p := os.Getenv("CHROME_BIN"); p != "" {
		return p
	}
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	t.Skip("no Chrome binary available")
	return ""
}

func TestLauncher_ConvertsHTMLEndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.Render.ChromePath = chromeBinary(t)
	cfg.Render.UserDataDir = t.TempDir()
	cfg.Render.SettleWindow = 100 * time.Millisecond

	rec := stats.NewMemory()
	c := converter.New(NewLauncher(cfg), rec, 30*time.Second)

	req, err := domain.NormalizeRequest(map[string]any{
		"html":    "<html><body style=\"background:#eee\"><h1>Hi</h1></body></html>",
		"options": map[string]any{"pageSize": "A4", "marginTop": "20mm"},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	// The top margin must reach Chrome distinct from the three defaulted ones.
	params, err := printParams(converter.PrintConfigFor(req), cfg.Render.PaperSizes)
	if err != nil {
		t.Fatalf("print params: %v", err)
	}
	wantTop, wantOther := 20*3.78/96, 10*3.78/96
	if math.Abs(params.MarginTop-wantTop) > 1e-9 {
		t.Fatalf("expected top margin %.4fin, got %.4fin", wantTop, params.MarginTop)
	}
	for name, m := range map[string]float64{"right": params.MarginRight, "bottom": params.MarginBottom, "left": params.MarginLeft} {
		if math.Abs(m-wantOther) > 1e-9 {
			t.Fatalf("expected %s margin %.4fin, got %.4fin", name, wantOther, m)
		}
	}

	for i := 0; i < 2; i++ {
		res, err := c.Convert(context.Background(), req)
		if err != nil {
			t.Fatalf("convert %d: %v", i, err)
		}
		if !bytes.HasPrefix(res.Data, []byte("%PDF")) {
			t.Fatalf("convert %d: output is not a PDF", i)
		}
	}

	snap, _ := rec.Snapshot(context.Background())
	if stats.InFlight(snap) != 0 || snap[stats.Released] != 2 {
		t.Fatalf("expected every context released, got %v", snap)
	}
	entries, _ := os.ReadDir(cfg.Render.UserDataDir)
	if len(entries) != 0 {
		t.Fatalf("expected no leftover profile dirs, found %d", len(entries))
	}
}

func TestLauncher_UnknownPaperFormatFailsAtPrint(t *testing.T) {
	cfg := testConfig()
	cfg.Render.ChromePath = chromeBinary(t)
	cfg.Render.UserDataDir = t.TempDir()
	cfg.Render.SettleWindow = 50 * time.Millisecond

	c := converter.New(NewLauncher(cfg), nil, 30*time.Second)
	req, _ := domain.NormalizeRequest(map[string]any{
		"html":    "<p>x</p>",
		"options": map[string]any{"pageSize": "Napkin"},
	})

	_, err := c.Convert(context.Background(), req)
	var rf *domain.RenderingFailure
	if !errors.As(err, &rf) || rf.Stage != domain.StagePrint {
		t.Fatalf("expected print-stage failure, got %v", err)
	}
}
