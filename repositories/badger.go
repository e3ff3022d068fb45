package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"ws-backend/domain"

	"github.com/dgraph-io/badger/v4"
)

const (
	roomPrefix    = "room:"
	userPrefix    = "user:"
	messagePrefix = "msg:"

	maxConflictRetries = 3
)

// OpenBadger opens the database at path, or an in-memory one when path is empty.
func OpenBadger(path string) (*badger.DB, error) {
	options := badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR)
	if path == "" {
		options = options.WithInMemory(true)
	}
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", path, err)
	}
	return db, nil
}

// BadgerStore keeps rooms, users and messages in an embedded Badger database.
//
// Keys:
//
//	room:{room_id}
//	user:{user_id}
//	msg:{room_id}:{unix_nano_padded}:{uuid}
//
// The 19-digit zero padding keeps messages of a room in chronological order
// under a prefix scan, and the uuid separates messages of the same nanosecond.
type BadgerStore struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewBadgerStore(db *badger.DB, log *slog.Logger, limitMessages *int) *BadgerStore {
	return &BadgerStore{db: db, log: log, limitMessages: limitMessages}
}

func roomKey(id domain.RoomID) []byte { return []byte(roomPrefix + id.String()) }

func userKey(id string) []byte { return []byte(userPrefix + id) }

func messageKey(m domain.Message) []byte {
	return fmt.Appendf(nil, "%s%s:%019d:%s", messagePrefix, m.Room, m.CreatedAt.UnixNano(), m.ID)
}

// CreateRoom records a room. Creating an existing room is a no-op.
func (s *BadgerStore) CreateRoom(ctx context.Context, id domain.RoomID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(roomKey(id))
		switch {
		case err == nil:
			return nil
		case !stderrors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(roomKey(id), encodeRoom(*domain.NewRoom(id)))
	})
}

func (s *BadgerStore) RoomExists(ctx context.Context, id domain.RoomID) (bool, error) {
	if id.Validate() != nil {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(roomKey(id))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("lookup room %s: %w", id, err)
	}
}

// EnsureUser stores a placeholder user unless one already exists.
func (s *BadgerStore) EnsureUser(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(userKey(id))
		switch {
		case err == nil:
			return nil
		case !stderrors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(userKey(id), encodeUser(domain.PlaceholderUser(id)))
	})
}

func (s *BadgerStore) PersistMessage(ctx context.Context, message domain.Message) error {
	if err := message.Room.Validate(); err != nil {
		return err
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(messageKey(message), encodeMessage(message))
	})
}

// update runs fn in a read-write transaction, retrying on write conflicts
// between concurrent upserts of the same key.
func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !stderrors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debug("Badger conflict, retrying", "attempt", attempt+1)
	}
	return err
}

// GetMessages returns the most recent messages of a room, newest first,
// up to the configured limit.
func (s *BadgerStore) GetMessages(room domain.RoomID) ([]domain.Message, error) {
	var messages []domain.Message
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix + room.String() + ":")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		// Reverse iteration starts from the greatest key of the prefix
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if s.limitMessages != nil && len(messages) == *s.limitMessages {
				s.log.Debug(fmt.Sprintf("Maximum of %d message reached", *s.limitMessages))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				message, err := decodeMessage(value)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

func (s *BadgerStore) ListRooms() ([]domain.Room, error) {
	return scan(s.db, roomPrefix, decodeRoom)
}

func (s *BadgerStore) ListUsers() ([]domain.User, error) {
	return scan(s.db, userPrefix, decodeUser)
}

func scan[T any](db *badger.DB, prefix string, decode func([]byte) (T, error)) ([]T, error) {
	var out []T
	err := db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(prefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				v, err := decode(value)
				if err != nil {
					return err
				}
				out = append(out, v)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}
