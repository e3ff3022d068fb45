package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"ws-backend/domain"
	"ws-backend/repositories"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestParseRooms(t *testing.T) {
	req := require.New(t)
	req.Equal([]domain.RoomID{"7", "42"}, parseRooms(" 7, ,42,"))
	req.Nil(parseRooms(""))
}

func TestPrintTables(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db, err := repositories.OpenBadger("")
	req.NoError(err)
	defer db.Close()
	limit := 10
	store := repositories.NewBadgerStore(db, logs.GetLoggerFromLevel(slog.LevelError), &limit)

	// Given a seeded room with one message
	req.NoError(store.CreateRoom(ctx, "42"))
	req.NoError(store.EnsureUser(ctx, "alice"))
	req.NoError(store.PersistMessage(ctx, domain.NewMessage("42", "alice", "hello there")))

	// When the tables are printed
	var buf bytes.Buffer
	req.NoError(printRooms(&buf, store))
	req.NoError(printUsers(&buf, store))
	req.NoError(printMessages(&buf, store, "42"))

	// Then every record shows up
	out := buf.String()
	req.Contains(out, "42")
	req.Contains(out, "alice@local.test")
	req.Contains(out, "hello there")
}
