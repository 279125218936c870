// Package room implements the room synchronization engine: user and room
// lifecycle, the playback state machine with host authorization, and the
// validated broadcast fan-out.
package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/repository/store"
	"github.com/syncroom/server/pkg/randstr"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomAlreadyExists    = errors.New("room already exists")
	ErrNotInRoom            = errors.New("user is not in a room")
	ErrMembersLimitReached  = errors.New("members limit reached")
	ErrPlaylistLimitReached = errors.New("playlist limit reached")
)

type iStore interface {
	GetPlaylist(ctx context.Context, roomId string) (store.Playlist, error)
	GetPlaylistVideos(ctx context.Context, playlistId string) ([]store.Video, error)
	InsertVideo(ctx context.Context, params *store.InsertVideoParams) error
	DeleteVideo(ctx context.Context, params *store.DeleteVideoParams) error
}

type iConnRepo interface {
	Add(conn *websocket.Conn, connId string) error
	RemoveByConnId(connId string) error
}

type iSender interface {
	Send(conn *websocket.Conn, v any) error
}

type iMetrics interface {
	RoomCreated()
	RoomDeleted()
	Connected()
	Disconnected()
	Broadcast()
	EventDropped(reason string)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	MembersLimit  int
	PlaylistLimit int
}

type service struct {
	mu    sync.RWMutex
	users map[string]*User
	rooms map[string]*Room

	store     iStore
	connRepo  iConnRepo
	sender    iSender
	metrics   iMetrics
	generator iGenerator
	logger    *slog.Logger
	cfg       *Config

	nowFn func() time.Time
}

func NewService(store iStore, connRepo iConnRepo, sender iSender, metrics iMetrics, logger *slog.Logger, cfg *Config) *service {
	return &service{
		users:     make(map[string]*User),
		rooms:     make(map[string]*Room),
		store:     store,
		connRepo:  connRepo,
		sender:    sender,
		metrics:   metrics,
		generator: randstr.NewHex(),
		logger:    logger,
		cfg:       cfg,
		nowFn:     time.Now,
	}
}

// resolveMemberRoom looks up the sender and its room. Operations from
// unknown, disconnected or roomless senders are dropped by the callers.
func (s *service) resolveMemberRoom(connId string) (*User, *Room, bool) {
	s.mu.RLock()
	user := s.users[connId]
	var room *Room
	if user != nil && user.roomId != "" {
		room = s.rooms[user.roomId]
	}
	s.mu.RUnlock()

	if user == nil || !user.SocketConnected() || room == nil {
		return nil, nil, false
	}

	return user, room, true
}

// broadcastLocked fans payload out to every member of room, skipping
// exclude and members whose connection already closed. A failed send is
// logged and does not block delivery to the rest. Caller holds room.mu.
func (s *service) broadcastLocked(ctx context.Context, room *Room, event string, payload any, exclude *User) {
	msg := &Message{Event: event, Payload: payload}
	for _, member := range room.members {
		if member == exclude {
			continue
		}
		if !member.SocketConnected() {
			continue
		}

		if err := s.sender.Send(member.Conn, msg); err != nil {
			s.logger.WarnContext(ctx, "broadcast send failed",
				"room_id", room.Id, "conn_id", member.ConnId, "event", event, "error", err)
		}
	}

	s.metrics.Broadcast()
}
