package core

// CriticalSection is the token handed to code running with interrupts
// masked. Only WithCritical produces a valid one; it must not be kept
// after the function it was passed to returns.
type CriticalSection struct {
	valid bool
}

// WithCritical runs fn with interrupts globally masked.
// Critical sections do not nest: fn must not call WithCritical again.
func WithCritical(fn func(cs CriticalSection)) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	fn(CriticalSection{valid: true})
}
