package session

import "time"

// fakeTimer is a manual Clock and Scheduler.
type fakeTimer struct {
	now     time.Time
	pending func()
	due     time.Time
	armed   bool
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{now: time.Unix(1_700_000_000, 0)}
}

func (f *fakeTimer) Now() time.Time {
	return f.now
}

func (f *fakeTimer) Schedule(d time.Duration, fn func()) {
	f.pending = fn
	f.due = f.now.Add(d)
	f.armed = true
}

func (f *fakeTimer) Cancel() {
	f.pending = nil
	f.armed = false
}

// Advance moves the clock forward, firing due callbacks in order.
func (f *fakeTimer) Advance(d time.Duration) {
	target := f.now.Add(d)
	for f.armed && !f.due.After(target) {
		f.now = f.due
		fn := f.pending
		f.armed = false
		f.pending = nil
		fn()
	}
	f.now = target
}

type recorder struct {
	outcomes []bool
	ticks    []time.Duration
	finished []Result
}

func (r *recorder) OnOutcome(hit bool) {
	r.outcomes = append(r.outcomes, hit)
}

func (r *recorder) OnTick(remaining time.Duration) {
	r.ticks = append(r.ticks, remaining)
}

func (r *recorder) OnFinished(result Result) {
	r.finished = append(r.finished, result)
}
