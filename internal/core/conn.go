package core

// Frame is a raw encoded payload headed for one client.
type Frame []byte

type SessionID string

// EventConn abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type EventConn interface {
	TrySend(Frame) error
	Close()
}
