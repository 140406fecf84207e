package protocol

import "errors"

var (
	ErrOverflow    = errors.New("bit cursor overflowed 64-bit frame")
	ErrUnknownKind = errors.New("unknown message kind")
	ErrQueueFull   = errors.New("outbound queue full")
	ErrNotJoined   = errors.New("datalink not joined")
)
