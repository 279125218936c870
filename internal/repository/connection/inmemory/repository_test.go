package inmemory

import (
	"log/slog"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/server/internal/repository/connection"
)

func TestAddRemove(t *testing.T) {
	r := NewRepo(slog.Default())
	conn := &websocket.Conn{}

	require.NoError(t, r.Add(conn, "conn-1"))
	assert.ErrorIs(t, r.Add(conn, "conn-2"), connection.ErrAlreadyExists)
	assert.ErrorIs(t, r.Add(&websocket.Conn{}, "conn-1"), connection.ErrAlreadyExists)

	got, err := r.GetConn("conn-1")
	require.NoError(t, err)
	assert.Same(t, conn, got)

	require.NoError(t, r.RemoveByConnId("conn-1"))
	assert.ErrorIs(t, r.RemoveByConnId("conn-1"), connection.ErrNotFound)

	_, err = r.GetConn("conn-1")
	assert.ErrorIs(t, err, connection.ErrNotFound)
}

func TestSendUnknownConn(t *testing.T) {
	r := NewRepo(slog.Default())

	err := r.Send(&websocket.Conn{}, map[string]any{"event": "x"})
	assert.ErrorIs(t, err, connection.ErrNotFound)
}
