package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ws-backend/mocks"
	"ws-backend/runtime"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestHandler(t *testing.T, verifier *mocks.MockTokenVerifier, registry *runtime.Registry, origins []string) *httptest.Server {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	router := runtime.NewRouter(
		registry,
		runtime.NewMembership(registry, log),
		mocks.NewMockIChatService(gomock.NewController(t)),
		runtime.NewBroadcaster(registry, log),
		log,
	)
	cfg := ConnConfig{BufferSize: 4, MaxMessageSize: 1024, WriteTimeout: time.Second, PongWait: 10 * time.Second}
	srv := httptest.NewServer(NewWSHandler(verifier, registry, router, NewOriginPolicy(origins, log), cfg, log))
	t.Cleanup(srv.Close)
	return srv
}

func TestWSHandler_Rejects_Bad_Token_Before_Upgrade(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockTokenVerifier(ctrl)
	registry := runtime.NewRegistry()
	srv := newTestHandler(t, verifier, registry, nil)

	// Given a verifier refusing the token
	verifier.EXPECT().Verify("forged").Return("", false)

	// When the client dials
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/?token=forged", nil)

	// Then the handshake fails with 401 and nothing is registered
	req.ErrorIs(err, websocket.ErrBadHandshake)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
	req.Zero(registry.Stats().Connections)
}

func TestWSHandler_Registers_Verified_Subject(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockTokenVerifier(ctrl)
	registry := runtime.NewRegistry()
	srv := newTestHandler(t, verifier, registry, nil)

	verifier.EXPECT().Verify("good").Return("alice", true)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/?token=good", nil)
	req.NoError(err)
	_ = resp.Body.Close()
	defer conn.Close()

	req.Eventually(func() bool {
		subs := registry.Connections()
		return len(subs) == 1 && subs[0].SubjectID == "alice"
	}, time.Second, 10*time.Millisecond)
}

func TestWSHandler_Enforces_Origin_Allow_List(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockTokenVerifier(ctrl)
	registry := runtime.NewRegistry()
	srv := newTestHandler(t, verifier, registry, []string{"https://chat.example.com"})

	verifier.EXPECT().Verify("good").Return("alice", true)

	// When the browser origin is not allowed
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/?token=good", header)

	// Then the upgrade is refused
	req.Error(err)
	req.Equal(http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
	req.Zero(registry.Stats().Connections)
}
