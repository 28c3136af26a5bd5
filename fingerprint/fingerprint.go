// Package fingerprint selects a randomized browser identity per run:
// user agent, viewport size, and request header set. The candidate
// pools are immutable package-level data built once at process start.
package fingerprint

import "math/rand"

// Viewport is a browser window size in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// Posture is the browser identity held for the lifetime of one run.
// It is chosen once and never mutated mid-run.
type Posture struct {
	UserAgent string
	Viewport  Viewport
	Headers   map[string]string
}

// userAgents are real desktop browser identities covering the three
// major engines. Keeping several engines in the pool makes repeated
// runs look like distinct visitors.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
}

// viewports are common desktop resolutions.
var viewports = []Viewport{
	{Width: 1920, Height: 1080},
	{Width: 1366, Height: 768},
	{Width: 1440, Height: 900},
}

// baseHeaders accompany every navigation regardless of the chosen UA.
var baseHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"Sec-Fetch-Dest":  "document",
	"Sec-Fetch-Mode":  "navigate",
	"Sec-Fetch-Site":  "none",
}

// Random draws a Posture uniformly at random from the candidate pools.
// The returned header map is a fresh copy so callers may not corrupt
// the shared pool.
func Random() Posture {
	headers := make(map[string]string, len(baseHeaders))
	for k, v := range baseHeaders {
		headers[k] = v
	}
	return Posture{
		UserAgent: userAgents[rand.Intn(len(userAgents))],
		Viewport:  viewports[rand.Intn(len(viewports))],
		Headers:   headers,
	}
}

// UserAgentPool returns the UA candidate pool (read-only by convention).
func UserAgentPool() []string { return userAgents }

// ViewportPool returns the viewport candidate pool (read-only by convention).
func ViewportPool() []Viewport { return viewports }
