package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"gitly.dev/gitly/internal/commands"
	"gitly.dev/gitly/internal/config"
	"gitly.dev/gitly/internal/output"
	"gitly.dev/gitly/internal/server"
	"gitly.dev/gitly/testhelpers"
)

type sleepArgs struct {
	Millis int `json:"millis"`
}

func newTestServer(t *testing.T, allowed ...string) *httptest.Server {
	t.Helper()
	cmds := append(commands.DefaultCommands(commands.Deps{}),
		commands.Typed("sleep", func(_ context.Context, args sleepArgs) (any, error) {
			time.Sleep(time.Duration(args.Millis) * time.Millisecond)
			return args.Millis, nil
		}),
	)
	srv := server.New(config.ServeConfig{Addr: "127.0.0.1:0", AllowedOrigins: allowed}, commands.NewRegistry(cmds...), output.NewSplog(&bytes.Buffer{}))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := strings.Replace(ts.URL, "http://", "ws://", 1) + "/ws"
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, resp, err := dialer.Dial(wsURL, header)
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}
	return conn, resp, err
}

func roundTrip(t *testing.T, conn *websocket.Conn, req commands.Request) map[string]any {
	t.Helper()
	require.NoError(t, conn.WriteJSON(req))
	return readResponse(t, conn)
}

func readResponse(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	var resp map[string]any
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestWebSocketDispatch(t *testing.T) {
	ts := newTestServer(t)
	conn, _, err := dial(t, ts, nil)
	require.NoError(t, err)

	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	args, err := json.Marshal(commands.PathArgs{Path: scene.Dir})
	require.NoError(t, err)

	resp := roundTrip(t, conn, commands.Request{ID: "a", Command: "get_current_branch", Args: args})
	require.Equal(t, map[string]any{"id": "a", "ok": true, "payload": "main"}, resp)

	resp = roundTrip(t, conn, commands.Request{ID: "b", Command: "list_branches", Args: args})
	require.Equal(t, true, resp["ok"])
	require.Equal(t, []any{map[string]any{"name": "main", "is_remote": false}}, resp["payload"])
}

func TestWebSocketErrors(t *testing.T) {
	ts := newTestServer(t)
	conn, _, err := dial(t, ts, nil)
	require.NoError(t, err)

	resp := roundTrip(t, conn, commands.Request{ID: "x", Command: "does_not_exist"})
	require.Equal(t, "x", resp["id"])
	require.Equal(t, false, resp["ok"])
	require.Equal(t, "unknown_command", resp["error"].(map[string]any)["kind"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	resp = readResponse(t, conn)
	require.Equal(t, "invalid_argument", resp["error"].(map[string]any)["kind"])

	// the connection survives bad requests
	resp = roundTrip(t, conn, commands.Request{ID: "y", Command: "sleep", Args: json.RawMessage(`{"millis":1}`)})
	require.Equal(t, true, resp["ok"])
}

func TestWebSocketRequestsAreSequential(t *testing.T) {
	ts := newTestServer(t)
	conn, _, err := dial(t, ts, nil)
	require.NoError(t, err)

	for i, millis := range []int{60, 1, 30} {
		require.NoError(t, conn.WriteJSON(commands.Request{
			ID:      fmt.Sprintf("r%d", i),
			Command: "sleep",
			Args:    json.RawMessage(fmt.Sprintf(`{"millis":%d}`, millis)),
		}))
	}
	for i := 0; i < 3; i++ {
		require.Equal(t, fmt.Sprintf("r%d", i), readResponse(t, conn)["id"])
	}
}

func TestOriginCheck(t *testing.T) {
	cases := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"no origin", "", true},
		{"localhost", "http://localhost:1420", true},
		{"loopback ip", "http://127.0.0.1:5173", true},
		{"configured", "https://app.gitly.dev", true},
		{"foreign", "https://evil.example", false},
		{"garbage", "::::", false},
	}

	ts := newTestServer(t, "https://app.gitly.dev")
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			header := http.Header{}
			if tc.origin != "" {
				header.Set("Origin", tc.origin)
			}
			_, resp, err := dial(t, ts, header)
			if tc.allowed {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status   string   `json:"status"`
		Commands []string `json:"commands"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body.Status)
	require.Contains(t, body.Commands, "list_all_commits_with_refs")
	require.Contains(t, body.Commands, "sleep")
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var logs bytes.Buffer
	srv := server.New(config.ServeConfig{Addr: ln.Addr().String()}, commands.Default(commands.Deps{}), output.NewSplog(&logs))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
