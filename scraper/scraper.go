// Package scraper drives the extraction pipeline: it establishes a
// randomized browser session, walks the entry-URL fallback list with
// anti-bot posture active, runs the extraction cascade on the accepted
// page, and returns canonical offers.
package scraper

import (
	"sync/atomic"
	"time"

	"github.com/sidnevart/commercial-real-estate-analysis/config"
	"github.com/sidnevart/commercial-real-estate-analysis/cookies"
	"github.com/sidnevart/commercial-real-estate-analysis/proxy"
)

// Scraper holds the run-independent pieces of the pipeline. Each call
// to FetchOffers launches its own browser session; only the cookie
// jar outlives a run.
type Scraper struct {
	browserCfg config.BrowserConfig
	parserCfg  config.ParserConfig
	proxies    proxy.Source
	jar        *cookies.Jar
	runs       atomic.Int64
	startTime  time.Time
}

// New creates a Scraper. proxies may be proxy.None; running without a
// proxy is not an error.
func New(browserCfg config.BrowserConfig, parserCfg config.ParserConfig, proxies proxy.Source) *Scraper {
	if proxies == nil {
		proxies = proxy.None
	}
	return &Scraper{
		browserCfg: browserCfg,
		parserCfg:  parserCfg,
		proxies:    proxies,
		jar:        cookies.New(parserCfg.CookiesPath),
		startTime:  time.Now(),
	}
}

// Runs returns the number of completed FetchOffers calls.
func (s *Scraper) Runs() int64 { return s.runs.Load() }

// Uptime returns the time since the Scraper was created.
func (s *Scraper) Uptime() time.Duration { return time.Since(s.startTime) }
