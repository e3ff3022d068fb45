// Command wsclient is a line oriented client for manual testing.
// It joins WS_ROOM, sends every stdin line as a chat message and prints
// every frame it receives.
//
// Lines starting with /join or /leave switch rooms instead:
//
//	/join 42
//	/leave 7
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	URL    string `envconfig:"WS_URL" default:"ws://localhost:8080/"`
	Token  string `envconfig:"WS_TOKEN" required:"true"`
	Room   string `envconfig:"WS_ROOM" default:"1"`
	Origin string `envconfig:"WS_ORIGIN"`
	// WS_COLOURS colours received frames by type
	Colours bool `envconfig:"WS_COLOURS" default:"true"`
}

type frame struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message,omitempty"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return err
	}

	target, err := url.Parse(cfg.URL)
	if err != nil {
		return fmt.Errorf("parse %s: %w", cfg.URL, err)
	}
	query := target.Query()
	query.Set("token", cfg.Token)
	target.RawQuery = query.Encode()

	header := http.Header{}
	if cfg.Origin != "" {
		header.Set("Origin", cfg.Origin)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(target.String(), header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial: %w (%s)", err, resp.Status)
		}
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	go printFrames(conn, cfg.Colours)

	room := cfg.Room
	if err := conn.WriteJSON(frame{Type: "join_room", RoomID: room}); err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out := frame{Type: "chat", RoomID: room, Message: line}
		switch {
		case strings.HasPrefix(line, "/join "):
			room = strings.TrimSpace(strings.TrimPrefix(line, "/join "))
			out = frame{Type: "join_room", RoomID: room}
		case strings.HasPrefix(line, "/leave "):
			out = frame{Type: "leave_room", RoomID: strings.TrimSpace(strings.TrimPrefix(line, "/leave "))}
		}
		if err := conn.WriteJSON(out); err != nil {
			return err
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return scanner.Err()
}

func printFrames(conn *websocket.Conn, colours bool) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Fprintf(os.Stderr, "connection closed: %v\n", err)
			os.Exit(0)
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			fmt.Println(string(data))
			continue
		}
		line := fmt.Sprintf("[%s] %s: %s", f.RoomID, f.Type, f.Message)
		if colours {
			line = style(f.Type).Render(line)
		}
		fmt.Println(line)
	}
}

func style(kind string) color.Style {
	switch kind {
	case "error":
		return color.New(color.FgRed)
	case "join_room_success":
		return color.New(color.BgBlack, color.FgGreen)
	default:
		return color.New(color.FgCyan)
	}
}
