package extract

import (
	"context"
	"testing"
)

const offersScriptPage = `<!DOCTYPE html>
<html><head><script>var cfg = {"theme":"light"};</script></head>
<body>
<div id="content">Коммерческая недвижимость</div>
<script type="text/javascript">
window.__serverData = {"offers": [{"cianId": 101, "bargainTerms": {"priceRur": 1500000}, "totalArea": 55.5}, {"id": "102", "price": 900000}]};
</script>
</body></html>`

func TestFromScripts_OffersAssignment(t *testing.T) {
	records, ok := FromScripts(offersScriptPage)
	if !ok || len(records) != 2 {
		t.Fatalf("FromScripts = (%d, %v), want 2 records", len(records), ok)
	}
}

func TestFromScripts_InitialStateObject(t *testing.T) {
	// The nested photos array defeats the bare "offers" pattern (its
	// lazy capture stops at the inner bracket and fails to decode), so
	// extraction must fall through to the __INITIAL_STATE__ pattern
	// and find the array under results.offers.
	page := `<html><body><script>
window.__INITIAL_STATE__ = {"results": {"offers": [{"id": 7, "photos": [1,2]}]}};
</script></body></html>`

	records, ok := FromScripts(page)
	if !ok || len(records) != 1 {
		t.Fatalf("FromScripts = (%d, %v), want 1 record from __INITIAL_STATE__", len(records), ok)
	}
}

func TestFromScripts_ListResultUsedDirectly(t *testing.T) {
	page := `<html><body><script>
var data = {"products": [{"id": 1}, {"id": 2}, {"id": 3}]};
</script></body></html>`

	records, ok := FromScripts(page)
	if !ok || len(records) != 3 {
		t.Fatalf("FromScripts = (%d, %v), want the products list directly", len(records), ok)
	}
}

func TestFromScripts_DecodeFailureTriesNextPattern(t *testing.T) {
	// "products" matches first but captures invalid JSON (trailing
	// comma); the "offers" pattern must still be tried.
	page := `<html><body><script>
var broken = {"products": [{"id": 1},]};
var good = {"offers": [{"id": 2}]};
</script></body></html>`

	records, ok := FromScripts(page)
	if !ok || len(records) != 1 {
		t.Fatalf("FromScripts = (%d, %v), want fallback to offers pattern", len(records), ok)
	}
}

func TestFromScripts_NoScripts(t *testing.T) {
	if _, ok := FromScripts(`<html><body><p>static page</p></body></html>`); ok {
		t.Fatal("page without scripts should be a miss")
	}
}

func TestFromScripts_NoMatchingPattern(t *testing.T) {
	page := `<html><body><script>console.log("nothing to see");</script></body></html>`
	if _, ok := FromScripts(page); ok {
		t.Fatal("scripts without listing assignments should be a miss")
	}
}

func TestScriptStage_Wrapper(t *testing.T) {
	st := ScriptStage(offersScriptPage)
	if st.Name != "scripts" {
		t.Fatalf("stage name = %q", st.Name)
	}
	records, ok := st.Extract(context.Background())
	if !ok || len(records) != 2 {
		t.Fatalf("stage Extract = (%d, %v)", len(records), ok)
	}
}
