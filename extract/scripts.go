package extract

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/ysmood/gson"
)

var scriptMatcher = cascadia.MustCompile("script")

// scriptPatterns are the JSON-shaped variable assignments known to
// carry listing data in the site's inline scripts, in trial order. The
// last pattern targets the call-argument object of a minified bundle.
var scriptPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)"products":\s*(\[.*?\])`),
	regexp.MustCompile(`(?s)"offers":\s*(\[.*?\])`),
	regexp.MustCompile(`(?s)"items":\s*(\[.*?\])`),
	regexp.MustCompile(`(?s)window\._cianConfig\s*=\s*(\{.*?\});`),
	regexp.MustCompile(`(?s)window\.__INITIAL_DATA__\s*=\s*(\{.*?\});`),
	regexp.MustCompile(`(?s)window\.__INITIAL_STATE__\s*=\s*(\{.*?\});`),
	regexp.MustCompile(`(?s)c\.ca\([^,]+,\s*(\{.*\})\)`),
}

// scriptKeyPaths are the listing-array locations tried when a matched
// assignment decodes to an object rather than a list.
var scriptKeyPaths = [][]string{
	{"products"},
	{"offers"},
	{"items"},
	{"results", "offers"},
}

// ScriptStage builds the inline-script scan stage over already-fetched
// page markup.
func ScriptStage(html string) Stage {
	return Stage{
		Name: "scripts",
		Extract: func(_ context.Context) ([]gson.JSON, bool) {
			return FromScripts(html)
		},
	}
}

// FromScripts collects the text of every embedded script block,
// concatenates it, and tries the assignment patterns in order. A
// pattern whose capture fails to decode, or decodes without a usable
// listings array, is skipped in favor of the next one.
func FromScripts(html string) ([]gson.JSON, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Warn("markup parse failed", "error", err)
		return nil, false
	}

	var blob strings.Builder
	doc.FindMatcher(scriptMatcher).Each(func(_ int, s *goquery.Selection) {
		blob.WriteString(s.Text())
	})
	scripts := blob.String()
	if scripts == "" {
		return nil, false
	}

	for _, pattern := range scriptPatterns {
		m := pattern.FindStringSubmatch(scripts)
		if m == nil {
			continue
		}
		j, ok := decode([]byte(m[1]))
		if !ok {
			slog.Warn("inline script capture is not valid JSON", "pattern", pattern.String())
			continue
		}
		if records, ok := elements(j); ok {
			return records, true
		}
		if records, ok := listingsUnder(j, scriptKeyPaths); ok {
			return records, true
		}
	}
	return nil, false
}
