package channel

import "fmt"

// Role of a handle, fixed for its lifetime.
type Role uint8

const (
	Consumer Role = iota // Opened with read intent.
	Producer             // Opened with write intent.
)

func (r Role) Opposite() Role {
	return r ^ 1
}

func (r Role) String() string {
	switch r {
	case Consumer:
		return "consumer"
	case Producer:
		return "producer"
	}

	return fmt.Sprintf("role(%d)", uint8(r))
}

func (r Role) valid() bool {
	return r == Consumer || r == Producer
}

// State of a channel.
type State uint8

const (
	StateUninitialized State = iota
	StateReady
	StateDraining // Peers met and one role has since vanished entirely.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateDraining:
		return "draining"
	case StateDestroyed:
		return "destroyed"
	}

	return fmt.Sprintf("state(%d)", uint8(s))
}
