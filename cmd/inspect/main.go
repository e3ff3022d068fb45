// Command inspect dumps a Badger store as tables and can seed rooms into it.
//
//	inspect -db ./data/badger                 # rooms and users
//	inspect -db ./data/badger -room 42        # messages of room 42, newest first
//	inspect -db ./data/badger -seed-room 7,42 # create rooms 7 and 42
//	inspect -driver postgres -dsn postgres://... -seed-room 7
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ws-backend/domain"
	"ws-backend/repositories"
	"ws-backend/repositories/postgres"

	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	driver := flag.String("driver", "badger", "Store to use: badger or postgres")
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN")
	room := flag.String("room", "", "Show the messages of this room")
	limit := flag.Int("limit", 50, "Maximum number of messages to show")
	seed := flag.String("seed-room", "", "Comma separated room ids to create")
	flag.Parse()

	log := logs.GetLoggerFromString("WARN")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *driver == "postgres" {
		return seedPostgres(ctx, *dsn, parseRooms(*seed))
	}

	db, err := repositories.OpenBadger(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	store := repositories.NewBadgerStore(db, log, limit)

	for _, id := range parseRooms(*seed) {
		if err := store.CreateRoom(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Room %s ready\n", id)
	}

	if *room != "" {
		return printMessages(os.Stdout, store, domain.RoomID(*room))
	}
	if err := printRooms(os.Stdout, store); err != nil {
		return err
	}
	return printUsers(os.Stdout, store)
}

func parseRooms(raw string) []domain.RoomID {
	var rooms []domain.RoomID
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			rooms = append(rooms, domain.RoomID(part))
		}
	}
	return rooms
}

func seedPostgres(ctx context.Context, dsn string, rooms []domain.RoomID) error {
	if dsn == "" {
		return fmt.Errorf("-dsn or DATABASE_URL is required with -driver postgres")
	}
	db, err := postgres.New(ctx, postgres.Config{DSN: dsn, PingTimeout: 5 * time.Second})
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	store := postgres.NewStore(db)
	for _, id := range rooms {
		if err := store.CreateRoom(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Room %s ready\n", id)
	}
	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func printRooms(w io.Writer, store *repositories.BadgerStore) error {
	rooms, err := store.ListRooms()
	if err != nil {
		return err
	}
	table := newTable(w, "Room", "Created")
	for _, r := range rooms {
		table.Append([]string{r.ID.String(), r.CreatedAt.Format(time.RFC3339)})
	}
	table.Render()
	return nil
}

func printUsers(w io.Writer, store *repositories.BadgerStore) error {
	users, err := store.ListUsers()
	if err != nil {
		return err
	}
	table := newTable(w, "User", "Email", "Name", "Created")
	for _, u := range users {
		table.Append([]string{u.ID, u.Email, u.Name, u.CreatedAt.Format(time.RFC3339)})
	}
	table.Render()
	return nil
}

func printMessages(w io.Writer, store *repositories.BadgerStore, room domain.RoomID) error {
	messages, err := store.GetMessages(room)
	if err != nil {
		return err
	}
	table := newTable(w, "At", "User", "Message", "ID")
	for _, m := range messages {
		// short id is enough to tell rows apart
		table.Append([]string{m.CreatedAt.Format("15:04:05.000"), m.UserID, m.Content, m.ID.String()[:8]})
	}
	table.Render()
	return nil
}

