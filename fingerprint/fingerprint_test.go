package fingerprint

import "testing"

func TestRandom_DrawsFromPools(t *testing.T) {
	uas := make(map[string]bool, len(userAgents))
	for _, ua := range userAgents {
		uas[ua] = true
	}
	vps := make(map[Viewport]bool, len(viewports))
	for _, vp := range viewports {
		vps[vp] = true
	}

	for i := 0; i < 50; i++ {
		p := Random()
		if !uas[p.UserAgent] {
			t.Fatalf("user agent %q not in pool", p.UserAgent)
		}
		if !vps[p.Viewport] {
			t.Fatalf("viewport %+v not in pool", p.Viewport)
		}
		if len(p.Headers) == 0 {
			t.Fatal("posture has no headers")
		}
	}
}

func TestRandom_HeadersAreACopy(t *testing.T) {
	p1 := Random()
	p1.Headers["Accept"] = "tampered"

	p2 := Random()
	if p2.Headers["Accept"] == "tampered" {
		t.Fatal("mutating one posture's headers leaked into the shared pool")
	}
}

func TestPoolSizes(t *testing.T) {
	if len(UserAgentPool()) < 3 {
		t.Fatalf("user agent pool too small: %d", len(UserAgentPool()))
	}
	if len(ViewportPool()) < 3 {
		t.Fatalf("viewport pool too small: %d", len(ViewportPool()))
	}
}
