package videogen

import (
	"math"
	"strings"
	"testing"
)

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("sora", "key")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "sora") {
		t.Errorf("error should name the provider: %v", err)
	}
}

func TestNewMissingKey(t *testing.T) {
	for _, name := range Names() {
		_, err := New(name, "")
		if err == nil {
			t.Fatalf("expected error for %s without key", name)
		}
		want := strings.ToUpper(name) + "_API_KEY"
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error for %s should mention %s: %v", name, want, err)
		}
	}
}

func TestNewCaseInsensitive(t *testing.T) {
	p, err := New("LUMA", "key")
	if err != nil {
		t.Fatalf("New(LUMA): %v", err)
	}
	if p.Name() != "luma" {
		t.Errorf("Name() = %q, want luma", p.Name())
	}
}

func TestNames(t *testing.T) {
	names := Names()
	want := []string{"luma", "pika", "runway", "stability"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestEstimateCostPureAndMonotonic(t *testing.T) {
	for _, name := range Names() {
		p, err := New(name, "key")
		if err != nil {
			t.Fatal(err)
		}
		five := p.EstimateCost(5)
		if p.EstimateCost(5) != five {
			t.Errorf("%s: EstimateCost not deterministic", name)
		}
		if p.EstimateCost(10) <= five {
			t.Errorf("%s: cost should grow with duration", name)
		}
		if math.Abs(five-5*RatePerSecond(name)) > 1e-9 {
			t.Errorf("%s: EstimateCost(5) = %v, want %v", name, five, 5*RatePerSecond(name))
		}
	}
}

func TestEstimateJobCost(t *testing.T) {
	// 6 segments x 5s on luma: 30s * 0.03 + 0.01 script + 1 * 0.02 voice.
	got := EstimateJobCost("luma", 6, 5)
	if got != 0.93 {
		t.Errorf("EstimateJobCost(luma, 6, 5) = %v, want 0.93", got)
	}

	// Unknown providers fall back to the default rate instead of failing.
	if EstimateJobCost("unknown", 6, 5) != EstimateJobCost("luma", 6, 5) {
		t.Error("unknown provider should use the default rate")
	}

	if EstimateJobCost("runway", 6, 5) <= EstimateJobCost("stability", 6, 5) {
		t.Error("runway should cost more than stability for the same footage")
	}
}
