package convert

import (
	"math"
	"sync"
)

// hysteresis is the minimum advance, in points, before a rescaled
// tool-native percentage is forwarded. Keeps yt-dlp's per-fragment
// output from flooding subscribers.
const hysteresis = 2

// bandReporter linearly maps a tool-native 0-100 percentage into the
// [lo,hi] band reserved for the download/encode phase of a job, and
// forwards it only when it has advanced past the hysteresis threshold.
// Safe for use from the stdout and stderr scanner goroutines at once.
type bandReporter struct {
	mu   sync.Mutex
	lo   float64
	hi   float64
	last float64
	out  chan<- Progress
}

func newBandReporter(out chan<- Progress, lo, hi float64) *bandReporter {
	return &bandReporter{lo: lo, hi: hi, last: lo, out: out}
}

// Report rescales nativePercent into the band. The message is chosen
// from the mapped value so the wording tracks the phase the tool is in.
func (r *bandReporter) Report(nativePercent float64, message func(mapped int) string) {
	mapped := math.Min(r.hi, r.lo+nativePercent*(r.hi-r.lo)/100)

	r.mu.Lock()
	if mapped <= r.last+hysteresis {
		r.mu.Unlock()
		return
	}
	r.last = mapped
	r.mu.Unlock()

	p := int(math.Floor(mapped))
	r.out <- Progress{Percent: p, Message: message(p)}
}

// byteReporter estimates progress for a stream with no native
// percentage: accumulated bytes are mapped onto the [lo,hi] band at one
// point per 100KB, capped at hi. An event is emitted whenever the
// estimate gains a whole point.
type byteReporter struct {
	lo      int
	hi      int
	bytes   int64
	last    int
	message string
	out     chan<- Progress
}

func newByteReporter(out chan<- Progress, lo, hi int, message string) *byteReporter {
	return &byteReporter{lo: lo, hi: hi, last: lo, message: message, out: out}
}

func (r *byteReporter) Add(n int) {
	r.bytes += int64(n)
	estimated := r.lo + int(r.bytes/100000)
	if estimated > r.hi {
		estimated = r.hi
	}
	if estimated > r.last {
		r.last = estimated
		r.out <- Progress{Percent: estimated, Message: r.message}
	}
}

// Write lets a byteReporter sit in an io.MultiWriter next to the
// destination file.
func (r *byteReporter) Write(p []byte) (int, error) {
	r.Add(len(p))
	return len(p), nil
}
