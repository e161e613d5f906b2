package push

// Observer receives channel telemetry. Implementations must be cheap and
// non-blocking.
type Observer interface {
	StateChanged(from, to State)
	FrameDelivered(kind string)
	FrameDropped(kind, reason string)
	Reconnecting()
}

type nopObserver struct{}

func (nopObserver) StateChanged(State, State)   {}
func (nopObserver) FrameDelivered(string)       {}
func (nopObserver) FrameDropped(string, string) {}
func (nopObserver) Reconnecting()               {}
