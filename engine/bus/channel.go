package bus

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies what a channel carries.
type Kind int

const (
	// KindSignal channels carry no payload; any number of subscribers react.
	KindSignal Kind = iota
	// KindData channels broadcast a payload to any number of subscribers.
	KindData
	// KindPull channels are request/response with exactly one responder.
	KindPull
)

func (k Kind) String() string {
	switch k {
	case KindSignal:
		return "signal"
	case KindData:
		return "data"
	case KindPull:
		return "pull"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Channel names one logical notification. Two channels are the same channel
// iff their IDs are equal; Name is for humans only.
type Channel struct {
	ID   uuid.UUID
	Name string
	Kind Kind
}

// NewChannel creates a channel with a fresh random identifier.
func NewChannel(name string, kind Kind) Channel {
	return Channel{ID: uuid.New(), Name: name, Kind: kind}
}

func fixedChannel(id, name string, kind Kind) Channel {
	return Channel{ID: uuid.MustParse(id), Name: name, Kind: kind}
}

func (c Channel) String() string { return fmt.Sprintf("%s (%s)", c.Name, c.ID) }
