package room

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connect registers a new transient, unauthenticated user for conn and
// returns its connection id.
func (s *service) Connect(ctx context.Context, conn *websocket.Conn) (string, error) {
	connId := uuid.NewString()

	if err := s.connRepo.Add(conn, connId); err != nil {
		return "", fmt.Errorf("failed to register connection: %w", err)
	}

	user := &User{
		ConnId:   connId,
		Conn:     conn,
		Username: "guest-" + connId[:8],
	}
	user.connected.Store(true)

	s.mu.Lock()
	s.users[connId] = user
	s.mu.Unlock()

	s.metrics.Connected()
	s.logger.InfoContext(ctx, "user connected", "conn_id", connId)

	return connId, nil
}

// Disconnect tears down the user bound to connId. Disconnecting an unknown
// or already-removed connection is a no-op.
func (s *service) Disconnect(ctx context.Context, connId string) error {
	s.mu.Lock()
	user, ok := s.users[connId]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.users, connId)

	user.connected.Store(false)
	now := s.nowFn()
	user.LastDisconnectAt = &now

	left := s.leaveCurrentRoomLocked(user)
	s.mu.Unlock()

	if err := s.connRepo.RemoveByConnId(connId); err != nil {
		s.logger.DebugContext(ctx, "connection already removed", "conn_id", connId)
	}

	s.broadcastMemberLeft(ctx, left)

	s.metrics.Disconnected()
	s.logger.InfoContext(ctx, "user disconnected", "conn_id", connId)

	return nil
}

// leftRoom captures what a departure needs to broadcast after the registry
// lock is released.
type leftRoom struct {
	room    *Room
	member  Member
	members []Member
}

// leaveCurrentRoomLocked removes user from its room, tearing the room down
// if it became empty. Caller holds s.mu. Returns nil when the user was not
// in a room or the room no longer exists.
func (s *service) leaveCurrentRoomLocked(user *User) *leftRoom {
	if user.roomId == "" {
		return nil
	}

	room := s.rooms[user.roomId]
	user.roomId = ""
	if room == nil {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.removeMemberLocked(user) {
		return nil
	}

	if len(room.members) == 0 {
		delete(s.rooms, room.Id)
		s.metrics.RoomDeleted()
		return nil
	}

	return &leftRoom{
		room: room,
		member: Member{
			Id:        user.ConnId,
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
			IsCreator: room.creatorConnId == user.ConnId,
		},
		members: room.memberListLocked(),
	}
}

func (s *service) broadcastMemberLeft(ctx context.Context, left *leftRoom) {
	if left == nil {
		return
	}

	left.room.mu.Lock()
	defer left.room.mu.Unlock()

	s.broadcastLocked(ctx, left.room, EventMemberLeft, map[string]any{
		"member":  left.member,
		"members": left.members,
	}, nil)
}
