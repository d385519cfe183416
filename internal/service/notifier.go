package service

import "portal/internal/model"

// Notifier receives events after the change they describe has committed.
// Implementations must not block.
type Notifier interface {
	Publish(event model.Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(model.Event) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
