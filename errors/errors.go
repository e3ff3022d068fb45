package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrInvalidToken      = fmt.Errorf("invalid or expired token")
	ErrMalformedFrame    = fmt.Errorf("malformed frame")
	ErrMissingField      = fmt.Errorf("missing required field")
	ErrInvalidRoomID     = fmt.Errorf("invalid room id")
	ErrRoomNotFound      = fmt.Errorf("room not found")
	ErrPersistence       = fmt.Errorf("message persistence failed")
	ErrUnknownConnection = fmt.Errorf("unknown connection")
	ErrConnectionClosed  = fmt.Errorf("connection closed")
	ErrSendBufferFull    = fmt.Errorf("send buffer full")
)
