package chrome

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"html2pdf/internal/config"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Render.UserDataDir = filepath.Join(os.TempDir(), "html2pdf-chrome-tests")
	cfg.Render.TimeoutSecs = 1
	return cfg
}

func TestCreateProfileDir_DefaultAndCustomBase(t *testing.T) {
	dir1, err := createProfileDir("")
	if err != nil {
		t.Fatalf("createProfileDir default base failed: %v", err)
	}
	defer os.RemoveAll(dir1)
	if _, err := os.Stat(dir1); err != nil {
		t.Fatalf("expected created dir to exist: %v", err)
	}

	customBase := t.TempDir()
	dir2, err := createProfileDir(customBase)
	if err != nil {
		t.Fatalf("createProfileDir custom base failed: %v", err)
	}
	defer os.RemoveAll(dir2)
	if filepath.Dir(dir2) != customBase {
		t.Fatalf("expected profile dir under custom base %q, got %q", customBase, dir2)
	}
}

func TestCreateProfileDir_InvalidBase(t *testing.T) {
	if _, err := createProfileDir("/dev/null/x"); err == nil {
		t.Fatalf("expected error for invalid base dir")
	}
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		in    string
		name  string
		value any
	}{
		{"--no-sandbox", "no-sandbox", true},
		{" --disable-setuid-sandbox ", "disable-setuid-sandbox", true},
		{"--window-size=1280,800", "window-size", "1280,800"},
		{"lang=en-US", "lang", "en-US"},
	}
	for _, tc := range tests {
		name, value := parseFlag(tc.in)
		if name != tc.name || value != tc.value {
			t.Fatalf("parseFlag(%q) = (%q, %v), want (%q, %v)", tc.in, name, value, tc.name, tc.value)
		}
	}
}

func TestAllocatorOptions_IncludeConfiguredFlags(t *testing.T) {
	cfg := testConfig()
	cfg.Render.ChromePath = "/opt/chrome/chrome"
	cfg.Render.BrowserFlags = []string{"--no-sandbox", "", "--lang=de"}
	l := NewLauncher(cfg)

	opts := l.allocatorOptions(t.TempDir())
	base := len(chromedp.DefaultExecAllocatorOptions) + 6
	// exec path + two non-empty flags
	if want := base + 1 + 2; len(opts) != want {
		t.Fatalf("expected %d allocator options, got %d", want, len(opts))
	}
}

func TestAcquire_MissingBinaryFailsAndCleansProfile(t *testing.T) {
	cfg := testConfig()
	cfg.Render.ChromePath = "/definitely/missing/chrome"
	cfg.Render.UserDataDir = t.TempDir()
	l := NewLauncher(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rc, err := l.Acquire(ctx)
	if err == nil {
		_ = rc.Release()
		t.Fatalf("expected launch failure for missing chrome binary")
	}

	entries, _ := os.ReadDir(cfg.Render.UserDataDir)
	if len(entries) != 0 {
		t.Fatalf("expected profile dir to be removed after failed launch, found %d entries", len(entries))
	}
}

func TestAcquire_CanceledContext(t *testing.T) {
	cfg := testConfig()
	cfg.Render.ChromePath = "/definitely/missing/chrome"
	cfg.Render.UserDataDir = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLauncher(cfg).Acquire(ctx); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}

func TestSessionRelease_IdempotentAndRemovesProfile(t *testing.T) {
	profile, err := createProfileDir(t.TempDir())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background())
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	s := &Session{tabCtx: tabCtx, tabCancel: tabCancel, allocCancel: allocCancel, profileDir: profile, tracker: newIdleTracker()}

	first := s.Release()
	second := s.Release()
	if first != second {
		t.Fatalf("expected repeated release to return the first result, got %v then %v", first, second)
	}
	if _, err := os.Stat(profile); !os.IsNotExist(err) {
		t.Fatalf("expected profile dir removed, stat err=%v", err)
	}
}
