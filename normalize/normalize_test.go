package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/ysmood/gson"
)

func candidates(t *testing.T, raw string) []gson.JSON {
	t.Helper()
	var arr []interface{}
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	out := make([]gson.JSON, len(arr))
	for i, v := range arr {
		out[i] = gson.New(v)
	}
	return out
}

func TestOffers_BargainTermsCandidate(t *testing.T) {
	offers := Offers(candidates(t,
		`[{"id": "42", "bargainTerms": {"priceRur": 500000}, "totalArea": 80}]`), "sale")

	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}
	o := offers[0]
	if o.ID != "42" || o.LotUUID != "42" {
		t.Errorf("id/lot_uuid = %q/%q, want 42/42", o.ID, o.LotUUID)
	}
	if o.Price == nil || *o.Price != 500000 {
		t.Errorf("price = %v, want 500000", o.Price)
	}
	if o.Area == nil || *o.Area != 80 {
		t.Errorf("area = %v, want 80", o.Area)
	}
	if o.URL != "https://www.cian.ru/sale/commercial/42/" {
		t.Errorf("url = %q", o.URL)
	}
	if o.Type != "sale" {
		t.Errorf("type = %q, want sale", o.Type)
	}
}

func TestOffers_CianIDPreferredOverID(t *testing.T) {
	offers := Offers(candidates(t, `[{"cianId": 273245634, "id": "ignored"}]`), "sale")
	if len(offers) != 1 || offers[0].ID != "273245634" {
		t.Fatalf("offers = %+v, want single record with cianId", offers)
	}
}

func TestOffers_NumericIDFromRepairStage(t *testing.T) {
	offers := Offers(candidates(t, `[{"id": 1, "price": 100}]`), "sale")
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}
	if offers[0].ID != "1" {
		t.Errorf("numeric id should stringify to %q, got %q", "1", offers[0].ID)
	}
	if offers[0].Price == nil || *offers[0].Price != 100 {
		t.Errorf("top-level price not resolved: %v", offers[0].Price)
	}
}

func TestOffers_MissingIdentifierDropped(t *testing.T) {
	offers := Offers(candidates(t,
		`[{"price": 100}, {"id": "", "price": 200}, {"id": "5"}]`), "sale")
	if len(offers) != 1 || offers[0].ID != "5" {
		t.Fatalf("only the identified candidate should survive, got %+v", offers)
	}
	for _, o := range offers {
		if o.ID == "" {
			t.Fatal("emitted record with empty id")
		}
	}
}

func TestOffers_MissingPriceAndAreaKeepRecord(t *testing.T) {
	offers := Offers(candidates(t, `[{"id": "77"}]`), "sale")
	if len(offers) != 1 {
		t.Fatalf("priceless candidate must not be disqualified, got %d", len(offers))
	}
	if offers[0].Price != nil || offers[0].Area != nil {
		t.Errorf("absent fields should stay nil: price=%v area=%v", offers[0].Price, offers[0].Area)
	}
}

func TestOffers_StringNumerics(t *testing.T) {
	offers := Offers(candidates(t, `[{"id": "8", "price": "250000", "totalArea": "41.3"}]`), "sale")
	if len(offers) != 1 {
		t.Fatalf("got %d offers", len(offers))
	}
	if offers[0].Price == nil || *offers[0].Price != 250000 {
		t.Errorf("string price not parsed: %v", offers[0].Price)
	}
	if offers[0].Area == nil || *offers[0].Area != 41.3 {
		t.Errorf("string area not parsed: %v", offers[0].Area)
	}
}

func TestOffers_MalformedCandidateSkippedNotFatal(t *testing.T) {
	in := []gson.JSON{
		gson.New("just a string"),
		gson.New(map[string]interface{}{"id": "ok"}),
		gson.New(nil),
	}
	offers := Offers(in, "sale")
	if len(offers) != 1 || offers[0].ID != "ok" {
		t.Fatalf("malformed candidates should be skipped, got %+v", offers)
	}
}

func TestOffers_Idempotent(t *testing.T) {
	in := candidates(t,
		`[{"id": "42", "bargainTerms": {"priceRur": 500000}, "totalArea": 80}, {"cianId": 7}]`)

	first := Offers(in, "sale")
	second := Offers(in, "sale")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestOffers_RentDealType(t *testing.T) {
	offers := Offers(candidates(t, `[{"id": "3"}]`), "rent")
	if offers[0].Type != "rent" {
		t.Errorf("type = %q, want rent", offers[0].Type)
	}
}

func TestOffers_EmptyInput(t *testing.T) {
	offers := Offers(nil, "sale")
	if offers == nil {
		t.Fatal("output must be an empty slice, never nil")
	}
	if len(offers) != 0 {
		t.Fatalf("got %d offers from empty input", len(offers))
	}
}
