package store

import "github.com/amterp/qrcard/internal/model"

// Transition computes the next snapshot from the current one.
// It must not modify its argument.
type Transition func(current model.Collection) (model.Collection, error)

// Change is delivered to subscribers after every successful commit.
type Change struct {
	Op         string           // Name of the operation that produced the snapshot
	Collection model.Collection // The new snapshot
}

// Subscriber receives change notifications.
// Implementations must not call Commit from OnChange.
type Subscriber interface {
	OnChange(change Change)
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(change Change)

func (f SubscriberFunc) OnChange(change Change) { f(change) }

// CardStore holds the single current card snapshot.
type CardStore interface {
	Snapshot() model.Collection
	Commit(op string, fn Transition) (model.Collection, error)
	Reset(collection model.Collection)
	Subscribe(sub Subscriber) (unsubscribe func())
}
