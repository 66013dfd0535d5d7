package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-rooms/internal/rooms"
)

type harness struct {
	t    *testing.T
	base []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	return &harness{
		t: t,
		base: []string{
			"--config", filepath.Join(dir, "roomctl.yaml"),
			"--driver", "sqlite",
			"--path", filepath.Join(dir, "rooms.db"),
			"--log-level", "error",
		},
	}
}

// run executes roomctl and returns the exit code, stdout and stderr.
func (e *harness) run(args ...string) (int, string, string) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	code := New(&stdout, &stderr).Run(context.Background(), append(append([]string{}, e.base...), args...))
	return code, stdout.String(), stderr.String()
}

type envelope struct {
	StatusCode   int             `json:"statusCode"`
	Data         json.RawMessage `json:"data"`
	ErrorMessage string          `json:"errorMessage"`
}

func decodeEnvelope(t *testing.T, out string) envelope {
	t.Helper()
	var got envelope
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	return got
}

func TestHealth(t *testing.T) {
	req := require.New(t)
	e := newHarness(t)

	code, out, _ := e.run("health")
	req.Equal(0, code)

	env := decodeEnvelope(t, out)
	req.Equal(200, env.StatusCode)
	req.JSONEq(`{"message":"pong"}`, string(env.Data))
	req.Empty(env.ErrorMessage)
}

func TestRoomLifecycle(t *testing.T) {
	req := require.New(t)
	e := newHarness(t)

	code, out, _ := e.run("users", "add", "--email", "john@example.com", "--name", "John", "--password", "password123")
	req.Equal(0, code, out)
	req.NotContains(out, "password")

	code, _, _ = e.run("users", "add", "--email", "test@example.com", "--name", "Test", "--password", "password123")
	req.Equal(0, code)

	code, out, _ = e.run("rooms", "create", "--name", "Test Room", "--user-id", "1")
	req.Equal(0, code, out)
	env := decodeEnvelope(t, out)
	req.Equal(201, env.StatusCode)

	var created rooms.RoomData
	req.NoError(json.Unmarshal(env.Data, &created))
	req.Equal(int64(1), created.Room.ID)
	req.Equal(int64(1), created.Room.CreatedBy)
	req.Equal([]int64{1}, created.Room.Members)

	code, out, _ = e.run("rooms", "join", "1", "--email", "test@example.com")
	req.Equal(0, code, out)
	var joined rooms.RoomData
	req.NoError(json.Unmarshal(decodeEnvelope(t, out).Data, &joined))
	req.Equal([]int64{1, 2}, joined.Room.Members)

	code, out, _ = e.run("rooms", "join", "1", "--email", "test@example.com")
	req.Equal(1, code)
	env = decodeEnvelope(t, out)
	req.Equal(400, env.StatusCode)
	req.Equal(rooms.MsgAlreadyMember, env.ErrorMessage)
	req.Empty(env.Data)

	code, out, _ = e.run("chats", "post", "1", "--email", "test@example.com", "--content", "hello")
	req.Equal(0, code, out)

	code, out, _ = e.run("rooms", "chats", "1")
	req.Equal(0, code, out)
	var chats rooms.ChatsData
	req.NoError(json.Unmarshal(decodeEnvelope(t, out).Data, &chats))
	req.Len(chats.Chats, 1)
	req.Equal("hello", chats.Chats[0].Content)

	code, out, _ = e.run("rooms", "update", "1", "--name", "Renamed")
	req.Equal(0, code, out)
	req.Contains(out, `"name": "Renamed"`)

	code, out, _ = e.run("rooms", "leave", "1", "--email", "test@example.com")
	req.Equal(0, code, out)

	code, out, _ = e.run("rooms", "list")
	req.Equal(0, code)
	var list rooms.RoomsData
	req.NoError(json.Unmarshal(decodeEnvelope(t, out).Data, &list))
	req.Len(list.Rooms, 1)
	req.Equal([]int64{1}, list.Rooms[0].Members)

	code, _, _ = e.run("rooms", "delete", "1")
	req.Equal(0, code)

	code, out, _ = e.run("rooms", "get", "1")
	req.Equal(1, code)
	req.Equal(rooms.MsgRoomNotFound, decodeEnvelope(t, out).ErrorMessage)
}

func TestCreateRoomForUnknownUser(t *testing.T) {
	req := require.New(t)
	e := newHarness(t)

	code, out, _ := e.run("rooms", "create", "--name", "Test Room", "--user-id", "42")
	req.Equal(1, code)
	env := decodeEnvelope(t, out)
	req.Equal(400, env.StatusCode)
	req.Equal(rooms.MsgUserNotFound, env.ErrorMessage)
}

func TestUsersAddRejectsDuplicates(t *testing.T) {
	req := require.New(t)
	e := newHarness(t)

	code, _, _ := e.run("users", "add", "--email", "john@example.com", "--name", "John", "--password", "password123")
	req.Equal(0, code)

	code, out, _ := e.run("users", "add", "--email", "john@example.com", "--name", "John", "--password", "password123")
	req.Equal(1, code)
	req.Equal(400, decodeEnvelope(t, out).StatusCode)
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"bad id", []string{"rooms", "get", "abc"}, `invalid id "abc"`},
		{"missing flag", []string{"rooms", "join", "1"}, "email"},
		{"unknown driver", []string{"--driver", "postgres", "health"}, "unknown storage.driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newHarness(t)
			code, out, errOut := e.run(tt.args...)
			require.Equal(t, 1, code)
			require.Empty(t, strings.TrimSpace(out))
			require.Contains(t, errOut, tt.wantErr)
		})
	}
}
