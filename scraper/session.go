package scraper

import (
	"log/slog"
	"math/rand"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/sidnevart/commercial-real-estate-analysis/fingerprint"
	"github.com/sidnevart/commercial-real-estate-analysis/models"
)

// session is one browser run: a freshly launched browser with a single
// page carrying the run's randomized posture. Sessions are never
// reused — every run gets a clean browser so fingerprint state cannot
// leak between runs.
type session struct {
	browser *rod.Browser
	page    *rod.Page
	capture *xhrCapture
	posture fingerprint.Posture
}

// supplementalStealthJS patches the handful of navigator surfaces the
// stock stealth script leaves at their headless defaults.
const supplementalStealthJS = `() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
	Object.defineProperty(navigator, 'platform', { get: () => 'Win32' });
	Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
	window.chrome = window.chrome || { runtime: {} };
}`

// newSession launches a browser, applies the posture and the persisted
// cookie set, and installs the API response capture. All of this
// happens before the first navigation; stealth scripts and listeners
// only cover navigations that start after they are installed.
func (s *Scraper) newSession(posture fingerprint.Posture, proxyURL string) (*session, error) {
	l := launcher.New().
		Headless(s.headlessForRun()).
		NoSandbox(s.browserCfg.NoSandbox)

	if s.browserCfg.BrowserBin != "" {
		l = l.Bin(s.browserCfg.BrowserBin)
	}
	if proxyURL != "" {
		l = l.Proxy(proxyURL)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewParseError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewParseError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return nil, models.NewParseError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}
	if _, err := page.EvalOnNewDocument(supplementalStealthJS); err != nil {
		slog.Warn("supplemental stealth injection failed", "error", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: posture.UserAgent,
	}); err != nil {
		slog.Warn("user agent override failed", "error", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             posture.Viewport.Width,
		Height:            posture.Viewport.Height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		slog.Warn("viewport override failed", "error", err)
	}

	headers := make(map[string]string, len(posture.Headers)+1)
	for k, v := range posture.Headers {
		headers[k] = v
	}
	if ref := searchReferer(s.parserCfg.EntryURLs); ref != "" {
		headers["Referer"] = ref
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)

	stored, err := s.jar.Load()
	if err != nil {
		slog.Warn("cookie restore failed, starting without a session", "error", err)
	} else if len(stored) > 0 {
		if err := page.SetCookies(stored); err != nil {
			slog.Warn("cookie apply failed", "error", err)
		} else {
			slog.Debug("session cookies restored", "count", len(stored))
		}
	}

	// Must happen before navigation or early API calls are missed.
	capture := captureResponses(page)

	slog.Info("browser session ready",
		"userAgent", posture.UserAgent,
		"viewport", posture.Viewport,
		"proxy", proxyURL != "")

	return &session{
		browser: browser,
		page:    page,
		capture: capture,
		posture: posture,
	}, nil
}

// close tears the session down. Closing the browser kills the launched
// process, so no page-level cleanup is needed.
func (sess *session) close() {
	sess.capture.stop()
	if err := sess.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
}

// headlessForRun resolves the effective headless flag. With random
// headless enabled roughly a third of runs are headless, the rest
// headed.
func (s *Scraper) headlessForRun() bool {
	if s.browserCfg.RandomHeadless {
		return rand.Intn(3) == 0
	}
	return s.browserCfg.Headless
}

// searchReferer fabricates a plausible search-engine referer for the
// first entry host.
func searchReferer(entryURLs []string) string {
	if len(entryURLs) == 0 {
		return ""
	}
	u, err := url.Parse(entryURLs[0])
	if err != nil {
		return ""
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders
// type (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
