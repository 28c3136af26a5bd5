// Package normalize maps the heterogeneous JSON shapes produced by
// any cascade stage into canonical listing records.
package normalize

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sidnevart/commercial-real-estate-analysis/models"
	"github.com/ysmood/gson"
)

// detailURLFormat builds the canonical detail-page URL from a listing id.
const detailURLFormat = "https://www.cian.ru/sale/commercial/%s/"

// identifierKeys are the accepted listing-identifier fields, in
// priority order. A candidate exposing neither is dropped.
var identifierKeys = []string{"cianId", "id"}

// Offers converts raw cascade candidates to canonical records.
// Candidates without an identifier, and candidates whose processing
// fails for any reason, are logged and skipped — a single malformed
// entry never aborts the batch. The function is pure with respect to
// its input: re-running it on the same candidates yields identical
// output.
func Offers(candidates []gson.JSON, dealType string) []models.Offer {
	offers := make([]models.Offer, 0, len(candidates))
	for i, c := range candidates {
		offer, ok := one(c, dealType, i)
		if !ok {
			continue
		}
		offers = append(offers, offer)
	}
	return offers
}

func one(c gson.JSON, dealType string, idx int) (offer models.Offer, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("offer candidate processing failed, skipping",
				"index", idx, "panic", r)
			ok = false
		}
	}()

	m, isMap := c.Val().(map[string]interface{})
	if !isMap {
		slog.Warn("offer candidate is not an object, skipping", "index", idx)
		return models.Offer{}, false
	}

	id := identifier(m)
	if id == "" {
		slog.Warn("offer candidate has no identifier, skipping", "index", idx)
		return models.Offer{}, false
	}

	// Price lives under bargainTerms.priceRur in full API payloads and
	// at the top level in lighter shapes. Absence of both keeps the
	// record with a nil price.
	var price *int64
	if bt, isBT := m["bargainTerms"].(map[string]interface{}); isBT {
		if v, found := numeric(bt["priceRur"]); found {
			p := int64(v)
			price = &p
		}
	}
	if price == nil {
		if v, found := numeric(m["price"]); found {
			p := int64(v)
			price = &p
		}
	}

	var area *float64
	if v, found := numeric(m["totalArea"]); found {
		a := v
		area = &a
	}

	return models.Offer{
		ID:      id,
		LotUUID: id,
		Price:   price,
		Area:    area,
		URL:     fmt.Sprintf(detailURLFormat, id),
		Type:    dealType,
	}, true
}

// identifier resolves the listing id from the accepted key set,
// tolerating both string and numeric encodings.
func identifier(m map[string]interface{}) string {
	for _, key := range identifierKeys {
		if v, found := m[key]; found {
			if s := stringID(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringID(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// numeric tolerates JSON numbers and numeric strings.
func numeric(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
