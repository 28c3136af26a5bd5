package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sidnevart/commercial-real-estate-analysis/models"
)

// primaryMarkers disqualify a page during entry acceptance. Hitting
// one is recoverable: the run moves on to the next entry URL.
var primaryMarkers = []string{"captcha"}

// secondaryMarkers are checked after a page has been accepted. Hitting
// one means the session itself is burned, so the run fails hard
// instead of retrying with the same browser.
var secondaryMarkers = []string{"robot", "робот"}

// navigate walks the entry-URL fallback list until one page is
// accepted, and returns that page's rendered markup. Per-URL failures
// (navigation errors, thin pages, captcha walls) are logged and
// skipped; exhausting the list or tripping a post-acceptance detection
// marker is fatal for the run.
func (s *Scraper) navigate(ctx context.Context, sess *session) (string, error) {
	for _, entry := range s.parserCfg.EntryURLs {
		html, err := s.tryURL(ctx, sess, entry)
		if err != nil {
			if ctx.Err() != nil {
				return "", models.NewParseError(models.ErrCodeTimeout, "run deadline reached during navigation", ctx.Err())
			}
			slog.Warn("entry rejected, trying next", "url", entry, "error", err)
			continue
		}

		slog.Info("entry accepted", "url", entry, "bytes", len(html))
		s.persistCookies(sess)

		if marker := detectionMarker(html, secondaryMarkers); marker != "" {
			s.dumpDebug(html)
			return "", models.NewParseError(models.ErrCodeBotDetected,
				fmt.Sprintf("detection marker %q on accepted page", marker), nil)
		}
		return html, nil
	}
	return "", models.NewParseError(models.ErrCodeNoEntryPoint, "every entry URL was rejected", nil)
}

// tryURL navigates to one entry and applies the acceptance checks:
// the page must load within the navigation timeout, carry a plausible
// amount of markup, and show no captcha wall.
func (s *Scraper) tryURL(ctx context.Context, sess *session, entry string) (string, error) {
	navCtx, cancel := context.WithTimeout(ctx, s.parserCfg.NavTimeout)
	defer cancel()

	p := sess.page.Context(navCtx)
	if err := p.Navigate(entry); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("DOM did not stabilize, proceeding", "url", entry, "error", err)
	}

	// Settle like a human would: pause, then poke at the page. The
	// settle window also gives the listing XHRs time to fire.
	sleepBetween(navCtx, s.parserCfg.SettleMin, s.parserCfg.SettleMax)
	humanize(navCtx, sess.page)

	html, err := p.HTML()
	if err != nil {
		return "", fmt.Errorf("read markup: %w", err)
	}
	if len(html) < s.parserCfg.MinContentSize {
		return "", fmt.Errorf("page too small: %d bytes", len(html))
	}
	if marker := detectionMarker(html, primaryMarkers); marker != "" {
		return "", fmt.Errorf("detection marker %q", marker)
	}
	return html, nil
}

// persistCookies snapshots the browser's full cookie set into the jar.
// Failure is logged, never fatal: a lost session costs the next run a
// captcha, not correctness.
func (s *Scraper) persistCookies(sess *session) {
	cookies, err := sess.browser.GetCookies()
	if err != nil {
		slog.Warn("cookie snapshot failed", "error", err)
		return
	}
	if err := s.jar.Save(cookies); err != nil {
		slog.Warn("cookie persist failed", "path", s.jar.Path(), "error", err)
		return
	}
	slog.Debug("session cookies persisted", "count", len(cookies))
}

// dumpDebug writes the raw markup of a fatally rejected page for
// offline inspection.
func (s *Scraper) dumpDebug(html string) {
	if s.parserCfg.DebugDumpPath == "" {
		return
	}
	if err := os.WriteFile(s.parserCfg.DebugDumpPath, []byte(html), 0o644); err != nil {
		slog.Warn("debug dump failed", "path", s.parserCfg.DebugDumpPath, "error", err)
		return
	}
	slog.Info("rejected page dumped", "path", s.parserCfg.DebugDumpPath)
}

// detectionMarker reports the first marker present in the markup,
// case-insensitively, or "" when the page is clean.
func detectionMarker(html string, markers []string) string {
	lower := strings.ToLower(html)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return m
		}
	}
	return ""
}
