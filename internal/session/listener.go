package session

import "time"

// Listener receives controller events on the control thread.
type Listener interface {
	OnOutcome(hit bool)
	OnTick(remaining time.Duration)
	OnFinished(result Result)
}

// ListenerFuncs adapts optional functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Outcome  func(hit bool)
	Tick     func(remaining time.Duration)
	Finished func(result Result)
}

// OnOutcome implements Listener.
func (l ListenerFuncs) OnOutcome(hit bool) {
	if l.Outcome != nil {
		l.Outcome(hit)
	}
}

// OnTick implements Listener.
func (l ListenerFuncs) OnTick(remaining time.Duration) {
	if l.Tick != nil {
		l.Tick(remaining)
	}
}

// OnFinished implements Listener.
func (l ListenerFuncs) OnFinished(result Result) {
	if l.Finished != nil {
		l.Finished(result)
	}
}
