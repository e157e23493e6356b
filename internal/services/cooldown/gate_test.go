package cooldown

import (
	"path/filepath"
	"testing"

	"github.com/darktohka/confessions-bot/internal/store"
)

func newTestGate(t *testing.T) (*Gate, *store.Store) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "confessions.json"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	gate, err := NewGate(st)
	if err != nil {
		t.Fatalf("create gate: %v", err)
	}
	return gate, st
}

func TestCheckAllowsFirstSubmission(t *testing.T) {
	gate, _ := newTestGate(t)

	retryAfter, allowed := gate.Check(1, 99, 1000)
	if !allowed || retryAfter != 0 {
		t.Fatalf("first submission should be allowed: allowed=%v retry=%d", allowed, retryAfter)
	}
}

func TestCheckBlocksWithinWindow(t *testing.T) {
	gate, _ := newTestGate(t)

	gate.Record(1, 99, 1000)

	retryAfter, allowed := gate.Check(1, 99, 1010)
	if allowed {
		t.Fatalf("submission inside the window should be blocked")
	}
	if retryAfter != 3590 {
		t.Fatalf("unexpected retry_after: %d", retryAfter)
	}
}

func TestRemainingTimeDecreasesMonotonically(t *testing.T) {
	gate, _ := newTestGate(t)

	gate.Record(1, 99, 1000)

	first, allowed := gate.Check(1, 99, 1010)
	if allowed {
		t.Fatalf("expected blocked at t=1010")
	}
	second, allowed := gate.Check(1, 99, 1500)
	if allowed {
		t.Fatalf("expected blocked at t=1500")
	}
	if second != first-490 {
		t.Fatalf("remaining time should shrink with elapsed time: first=%d second=%d", first, second)
	}
	if second <= 0 {
		t.Fatalf("blocked result must carry a positive wait: %d", second)
	}
}

func TestCheckAllowsAfterWindow(t *testing.T) {
	gate, _ := newTestGate(t)

	gate.Record(1, 99, 1000)

	if _, allowed := gate.Check(1, 99, 4600); !allowed {
		t.Fatalf("submission after the window should be allowed")
	}
}

func TestZeroCooldownDisablesGate(t *testing.T) {
	gate, st := newTestGate(t)

	st.SetCooldownSeconds(1, 0)
	gate.Record(1, 99, 1000)

	retryAfter, allowed := gate.Check(1, 99, 1000)
	if !allowed || retryAfter != 0 {
		t.Fatalf("zero policy should always allow: allowed=%v retry=%d", allowed, retryAfter)
	}
}

func TestCustomPolicyOverridesDefault(t *testing.T) {
	gate, st := newTestGate(t)

	st.SetCooldownSeconds(1, 60)
	gate.Record(1, 99, 1000)

	if _, allowed := gate.Check(1, 99, 1059); allowed {
		t.Fatalf("expected blocked inside the 60s window")
	}
	if _, allowed := gate.Check(1, 99, 1060); !allowed {
		t.Fatalf("expected allowed once the 60s window elapsed")
	}

	if gate.Seconds(2) != DefaultSeconds {
		t.Fatalf("unset community should fall back to the default policy")
	}
}

func TestCooldownsAreScopedPerCommunity(t *testing.T) {
	gate, _ := newTestGate(t)

	gate.Record(1, 99, 1000)

	if _, allowed := gate.Check(2, 99, 1001); !allowed {
		t.Fatalf("cooldown in one community must not block another")
	}
}
