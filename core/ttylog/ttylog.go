// Package ttylog records and replays terminal sessions.
package ttylog

// FD identifies the stream an IO event belongs to.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

// Entry is one recorded terminal event. Exactly one of the event
// fields is set.
type Entry struct {
	TimestampMicros int64

	IO    *IOEvent
	Close *CloseEvent
}

// IOEvent is data moving over one of the session's streams.
type IOEvent struct {
	Fd   FD
	Data []byte
}

// CloseEvent marks the end of the session.
type CloseEvent struct{}

// NewIOEntry builds an IO entry.
func NewIOEntry(timestampMicros int64, fd FD, data []byte) *Entry {
	return &Entry{
		TimestampMicros: timestampMicros,
		IO:              &IOEvent{Fd: fd, Data: data},
	}
}

// NewCloseEntry builds a close entry.
func NewCloseEntry(timestampMicros int64) *Entry {
	return &Entry{
		TimestampMicros: timestampMicros,
		Close:           &CloseEvent{},
	}
}
