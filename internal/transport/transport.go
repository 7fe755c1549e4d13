// Package transport moves sync frames between co-located participants
// and tracks who is currently reachable.
package transport

import (
	"errors"
	"sync"

	"repx/internal/models"
)

// MaxFrameBytes is the hard payload cap of the frame channel. Oversize
// frames are dropped at Send, never split.
const MaxFrameBytes = 255

var ErrNoProfile = errors.New("transport: no profile published")

// Frame is one inbound payload with its routing prefix and origin.
type Frame struct {
	Prefix string
	Body   string
	Sender models.Identity
}

type RosterEntry struct {
	Identity models.Identity
	LastSeen int64
}

type TransportInterface interface {
	// Send broadcasts a frame into the given scope. Returns false when
	// the frame was dropped (oversize or transport failure).
	Send(prefix, frame, scope string) bool
	Inbound() <-chan Frame
	RosterEvents() <-chan struct{}
	CurrentRoster() []RosterEntry
	Scope() string
	LiveLookup(id models.Identity) (*models.ParticipantMeta, error)
	PublishProfile(meta *models.ParticipantMeta) error
	Close() error
}

// noopTransport serves instances running without a broker. Nothing is
// reachable, so every delivery stays deferred.
type noopTransport struct {
	inbound chan Frame
	events  chan struct{}
	once    sync.Once
}

func NewNoopTransport() TransportInterface {
	return &noopTransport{
		inbound: make(chan Frame),
		events:  make(chan struct{}),
	}
}

func (n *noopTransport) Send(_, _, _ string) bool      { return false }
func (n *noopTransport) Inbound() <-chan Frame         { return n.inbound }
func (n *noopTransport) RosterEvents() <-chan struct{} { return n.events }
func (n *noopTransport) CurrentRoster() []RosterEntry  { return nil }
func (n *noopTransport) Scope() string                 { return "" }

func (n *noopTransport) PublishProfile(_ *models.ParticipantMeta) error {
	return nil
}

func (n *noopTransport) LiveLookup(_ models.Identity) (*models.ParticipantMeta, error) {
	return nil, ErrNoProfile
}

func (n *noopTransport) Close() error {
	n.once.Do(func() {
		close(n.inbound)
		close(n.events)
	})
	return nil
}
