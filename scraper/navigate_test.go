package scraper

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sidnevart/commercial-real-estate-analysis/config"
	"github.com/sidnevart/commercial-real-estate-analysis/models"
)

func TestDetectionMarker(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		markers []string
		want    string
	}{
		{"clean page", "<html><body>Коммерческая недвижимость</body></html>", primaryMarkers, ""},
		{"captcha lower", "<html>please solve the captcha</html>", primaryMarkers, "captcha"},
		{"captcha mixed case", "<html><div class='CAPTCHA-box'></div></html>", primaryMarkers, "captcha"},
		{"robot wall", "<html>Подтвердите, что вы не робот</html>", secondaryMarkers, "робот"},
		{"robot latin", "<html>Are you a ROBOT?</html>", secondaryMarkers, "robot"},
		{"secondary not in primary", "<html>robot</html>", primaryMarkers, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectionMarker(tt.html, tt.markers); got != tt.want {
				t.Errorf("detectionMarker = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNavigate_NoEntryPointsIsFatalAndLeavesCookiesUntouched(t *testing.T) {
	cookiePath := filepath.Join(t.TempDir(), "cookies.json")
	s := New(config.BrowserConfig{}, config.ParserConfig{CookiesPath: cookiePath}, nil)

	// No entry URLs means no page is ever accepted, so the session is
	// never touched.
	_, err := s.navigate(context.Background(), nil)

	var perr *models.ParseError
	if !errors.As(err, &perr) || perr.Code != models.ErrCodeNoEntryPoint {
		t.Fatalf("navigate error = %v, want code %s", err, models.ErrCodeNoEntryPoint)
	}
	if _, statErr := os.Stat(cookiePath); !errors.Is(statErr, fs.ErrNotExist) {
		t.Fatalf("cookie file must not be created on a failed run, stat = %v", statErr)
	}
}

func TestDumpDebug(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.html")
	s := New(config.BrowserConfig{}, config.ParserConfig{DebugDumpPath: path}, nil)

	s.dumpDebug("<html>blocked</html>")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("dump file not written: %v", err)
	}
	if string(data) != "<html>blocked</html>" {
		t.Errorf("dump content = %q", data)
	}
}

func TestDumpDebug_DisabledWhenPathEmpty(t *testing.T) {
	s := New(config.BrowserConfig{}, config.ParserConfig{}, nil)
	// Must not panic or write anywhere.
	s.dumpDebug("<html></html>")
}

func TestSearchReferer(t *testing.T) {
	ref := searchReferer([]string{"https://www.cian.ru/cat.php?deal_type=sale"})
	if ref != "https://www.google.com/search?q=www.cian.ru" {
		t.Errorf("searchReferer = %q", ref)
	}
	if searchReferer(nil) != "" {
		t.Error("empty entry list should yield no referer")
	}
}

func TestSleepBetween_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleepBetween(ctx, time.Second, 2*time.Second) {
		t.Fatal("canceled context should abort the sleep")
	}
}

func TestSleepBetween_Completes(t *testing.T) {
	start := time.Now()
	if !sleepBetween(context.Background(), time.Millisecond, 2*time.Millisecond) {
		t.Fatal("sleep should complete under a live context")
	}
	if time.Since(start) > time.Second {
		t.Fatal("sleep overshot the requested window")
	}
}

func TestHeadlessForRun_Fixed(t *testing.T) {
	headed := New(config.BrowserConfig{Headless: false}, config.ParserConfig{}, nil)
	if headed.headlessForRun() {
		t.Error("fixed config should be honored")
	}
	headless := New(config.BrowserConfig{Headless: true}, config.ParserConfig{}, nil)
	if !headless.headlessForRun() {
		t.Error("fixed config should be honored")
	}
}

func TestHeadlessForRun_RandomProducesBothModes(t *testing.T) {
	s := New(config.BrowserConfig{Headless: true, RandomHeadless: true}, config.ParserConfig{}, nil)
	seen := map[bool]bool{}
	for i := 0; i < 200; i++ {
		seen[s.headlessForRun()] = true
	}
	if !seen[true] || !seen[false] {
		t.Errorf("random headless never varied: %v", seen)
	}
}

func TestPageTitle(t *testing.T) {
	if got := pageTitle("<html><head><title> Аренда офисов </title></head></html>"); got != "Аренда офисов" {
		t.Errorf("pageTitle = %q", got)
	}
	if got := pageTitle("<html><body>no title</body></html>"); got != "" {
		t.Errorf("pageTitle on titleless page = %q", got)
	}
}
