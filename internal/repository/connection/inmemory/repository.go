// Package inmemory maps live websocket connections to connection ids and
// owns the per-connection write lock.
package inmemory

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/repository/connection"
)

type repo struct {
	mu       sync.RWMutex
	byConn   map[*websocket.Conn]string
	byConnId map[string]*websocket.Conn
	writeMu  map[*websocket.Conn]*sync.Mutex
	logger   *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		byConn:   make(map[*websocket.Conn]string),
		byConnId: make(map[string]*websocket.Conn),
		writeMu:  make(map[*websocket.Conn]*sync.Mutex),
		logger:   logger,
	}
}

func (r *repo) Add(conn *websocket.Conn, connId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byConn[conn] != "" || r.byConnId[connId] != nil {
		return connection.ErrAlreadyExists
	}

	r.byConn[conn] = connId
	r.byConnId[connId] = conn
	r.writeMu[conn] = &sync.Mutex{}

	return nil
}

func (r *repo) RemoveByConnId(connId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.byConnId[connId]
	if !ok {
		return connection.ErrNotFound
	}

	delete(r.byConn, conn)
	delete(r.byConnId, connId)
	delete(r.writeMu, conn)

	return nil
}

func (r *repo) GetConn(connId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byConnId[connId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

// Send writes v as JSON to conn. Writes to the same connection are
// serialized; gorilla/websocket does not allow concurrent writers.
func (r *repo) Send(conn *websocket.Conn, v any) error {
	r.mu.RLock()
	mu, ok := r.writeMu[conn]
	r.mu.RUnlock()

	if !ok {
		return connection.ErrNotFound
	}

	mu.Lock()
	defer mu.Unlock()

	return conn.WriteJSON(v)
}
