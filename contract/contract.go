//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"ws-backend/domain"
)

// TokenVerifier authenticates a bearer credential and returns its subject.
type TokenVerifier interface {
	Verify(token string) (subjectID string, ok bool)
}

// Sink is the outbound half of a live connection.
// Send must not block: a full or closed sink reports an error instead.
type Sink interface {
	Send(ctx context.Context, data []byte) error
	Closed() bool
	Close()
}

// Store is the durable side of the chat: rooms are owned elsewhere,
// users are materialised lazily and messages are append-only.
type Store interface {
	RoomExists(ctx context.Context, room domain.RoomID) (bool, error)
	EnsureUser(ctx context.Context, userID string) error
	PersistMessage(ctx context.Context, message domain.Message) error
}

// IChatService validates and records a chat message before it is broadcast.
type IChatService interface {
	Accept(ctx context.Context, room domain.RoomID, subjectID, text string) (bool, error)
}

type WorkerName string

// Worker does one job until ctx is done. It need not recover its own
// panics: the supervisor restarts it after a panic or an error.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
