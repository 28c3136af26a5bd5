package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/sidnevart/commercial-real-estate-analysis/extract"
	"github.com/sidnevart/commercial-real-estate-analysis/fingerprint"
	"github.com/sidnevart/commercial-real-estate-analysis/models"
	"github.com/sidnevart/commercial-real-estate-analysis/normalize"
)

// Result is the outcome of one extraction run. Stage names the cascade
// stage that produced the candidates ("" when every stage missed), and
// Method records whether the plain-HTTP probe or a full browser
// session served the run.
type Result struct {
	Offers []models.Offer
	Stage  string
	Method string
}

// FetchOffers performs one full extraction run: draw a posture, probe
// over plain HTTP when enabled, otherwise drive a fresh browser
// session through the entry fallback list, run the cascade on the
// accepted page, and normalize whatever it yields. A run that extracts
// zero offers is a success with an empty slice; errors are reserved
// for runs that never reached an extractable page.
func (s *Scraper) FetchOffers(ctx context.Context) (*Result, error) {
	started := time.Now()
	posture := fingerprint.Random()
	proxyURL := s.proxies.Get()

	if s.parserCfg.HTTPFirst {
		if res, ok := s.tryHTTPFirst(ctx, posture, proxyURL); ok {
			s.finishRun(res, started)
			return res, nil
		}
	}

	sess, err := s.newSession(posture, proxyURL)
	if err != nil {
		return nil, err
	}
	defer sess.close()

	html, err := s.navigate(ctx, sess)
	if err != nil {
		return nil, err
	}

	stages := []extract.Stage{
		extract.NetworkStage(sess.capture.Bodies(), s.parserCfg.XHRTimeout),
		extract.ScriptStage(html),
		extract.RepairStage(html),
	}
	records, stage := extract.Run(ctx, stages)

	res := &Result{
		Offers: normalize.Offers(records, s.parserCfg.DealType),
		Stage:  stage,
		Method: "browser",
	}
	s.finishRun(res, started)
	return res, nil
}

func (s *Scraper) finishRun(res *Result, started time.Time) {
	s.runs.Add(1)
	slog.Info("extraction run complete",
		"offers", len(res.Offers),
		"stage", res.Stage,
		"method", res.Method,
		"elapsed", time.Since(started))
}
