package convert

import (
	"testing"
)

func drain(ch chan Progress) []Progress {
	var got []Progress
	for {
		select {
		case p := <-ch:
			got = append(got, p)
		default:
			return got
		}
	}
}

func TestBandReporterMapsIntoBand(t *testing.T) {
	tests := []struct {
		name     string
		lo, hi   float64
		native   float64
		want     int
	}{
		{"audio band midpoint", 25, 75, 50, 50},
		{"audio band full", 25, 75, 100, 75},
		{"video band midpoint", 25, 90, 50, 57},
		{"video band full", 25, 90, 100, 90},
		{"overshoot clamps to hi", 25, 75, 150, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := make(chan Progress, 8)
			r := newBandReporter(ch, tt.lo, tt.hi)
			r.Report(tt.native, func(int) string { return "working" })

			got := drain(ch)
			if len(got) != 1 {
				t.Fatalf("emitted %d events, want 1", len(got))
			}
			if got[0].Percent != tt.want {
				t.Errorf("percent = %d, want %d", got[0].Percent, tt.want)
			}
		})
	}
}

func TestBandReporterHysteresis(t *testing.T) {
	ch := make(chan Progress, 16)
	r := newBandReporter(ch, 25, 75)

	// 0% maps to 25, equal to the starting point: suppressed. Small
	// advances inside the threshold are suppressed too.
	r.Report(0, func(int) string { return "" })
	r.Report(2, func(int) string { return "" })  // maps to 26
	r.Report(4, func(int) string { return "" })  // maps to 27
	r.Report(10, func(int) string { return "" }) // maps to 30: emitted
	r.Report(11, func(int) string { return "" }) // maps to 30.5: suppressed
	r.Report(20, func(int) string { return "" }) // maps to 35: emitted

	got := drain(ch)
	if len(got) != 2 {
		t.Fatalf("emitted %d events, want 2 (got %v)", len(got), got)
	}
	if got[0].Percent != 30 || got[1].Percent != 35 {
		t.Errorf("percents = [%d %d], want [30 35]", got[0].Percent, got[1].Percent)
	}
}

func TestBandReporterMessageUsesMappedPercent(t *testing.T) {
	ch := make(chan Progress, 4)
	r := newBandReporter(ch, 25, 75)

	var seen int
	r.Report(50, func(mapped int) string {
		seen = mapped
		return "msg"
	})

	got := drain(ch)
	if len(got) != 1 || got[0].Message != "msg" {
		t.Fatalf("got %v, want one event with message", got)
	}
	if seen != 50 {
		t.Errorf("message callback saw %d, want mapped value 50", seen)
	}
}

func TestByteReporterOnePointPer100KB(t *testing.T) {
	ch := make(chan Progress, 64)
	r := newByteReporter(ch, 20, 50, "downloading")

	r.Add(99_999) // under a point
	r.Add(1)      // crosses 100KB: 21
	r.Add(300_000) // crosses to 24

	got := drain(ch)
	if len(got) != 2 {
		t.Fatalf("emitted %d events, want 2 (got %v)", len(got), got)
	}
	if got[0].Percent != 21 || got[1].Percent != 24 {
		t.Errorf("percents = [%d %d], want [21 24]", got[0].Percent, got[1].Percent)
	}
	if got[0].Message != "downloading" {
		t.Errorf("message = %q, want downloading", got[0].Message)
	}
}

func TestByteReporterCapsAtHi(t *testing.T) {
	ch := make(chan Progress, 256)
	r := newByteReporter(ch, 20, 50, "downloading")

	r.Add(100_000_000) // far past the band
	r.Add(100_000_000) // no further emission at the cap

	got := drain(ch)
	if len(got) != 1 {
		t.Fatalf("emitted %d events, want 1", len(got))
	}
	if got[0].Percent != 50 {
		t.Errorf("percent = %d, want 50", got[0].Percent)
	}
}

func TestByteReporterAsWriter(t *testing.T) {
	ch := make(chan Progress, 8)
	r := newByteReporter(ch, 20, 50, "downloading")

	n, err := r.Write(make([]byte, 250_000))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 250_000 {
		t.Errorf("n = %d, want 250000", n)
	}
	got := drain(ch)
	if len(got) != 1 || got[0].Percent != 22 {
		t.Errorf("got %v, want one event at 22", got)
	}
}
