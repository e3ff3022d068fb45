package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"

	"ws-backend/domain"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// numericRoom parses a room id the way the schema stores it.
// Anything that is not a finite integer can never match a row.
func numericRoom(id domain.RoomID) (int64, bool) {
	n, err := strconv.ParseInt(id.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Store) RoomExists(ctx context.Context, id domain.RoomID) (bool, error) {
	n, ok := numericRoom(id)
	if !ok {
		return false, nil
	}
	var found int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM "Room" WHERE id = $1`, n).Scan(&found)
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("lookup room %s: %w", id, err)
	}
}

// EnsureUser inserts a placeholder user, or does nothing if the id exists.
func (s *Store) EnsureUser(ctx context.Context, userID string) error {
	u := domain.PlaceholderUser(userID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO "User" (id, email, password, name)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO NOTHING`,
		u.ID, u.Email, "local", u.Name)
	if err != nil {
		return fmt.Errorf("ensure user %s: %w", userID, err)
	}
	return nil
}

func (s *Store) PersistMessage(ctx context.Context, message domain.Message) error {
	n, ok := numericRoom(message.Room)
	if !ok {
		return fmt.Errorf("persist message: room %q is not numeric", message.Room)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO "Chat" ("roomId", message, "userId") VALUES ($1, $2, $3)`,
		n, message.Content, message.UserID)
	if err != nil {
		return fmt.Errorf("persist message: %w", err)
	}
	return nil
}

// CreateRoom inserts a room with an explicit id, used for seeding.
func (s *Store) CreateRoom(ctx context.Context, id domain.RoomID) error {
	n, ok := numericRoom(id)
	if !ok {
		return fmt.Errorf("create room: room %q is not numeric", id)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO "Room" (id, slug) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		n, "room-"+id.String())
	if err != nil {
		return fmt.Errorf("create room %s: %w", id, err)
	}
	return nil
}
