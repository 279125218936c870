package room

import (
	"context"
)

const roomIdLength = 8

type CreateRoomParams struct {
	ConnId string
	RoomId string
}

type CreateRoomResponse struct {
	RoomId  string   `json:"roomId"`
	Members []Member `json:"members"`
}

// CreateRoom creates a room with the given id (or a generated one) and
// makes the caller its creator and first member. The caller implicitly
// leaves its previous room.
func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	s.mu.Lock()
	user, ok := s.users[params.ConnId]
	if !ok || !user.SocketConnected() {
		s.mu.Unlock()
		return CreateRoomResponse{}, ErrUserNotFound
	}

	roomId := params.RoomId
	if roomId == "" {
		roomId = s.generator.GenerateRandomString(roomIdLength)
	}
	if _, taken := s.rooms[roomId]; taken {
		s.mu.Unlock()
		return CreateRoomResponse{}, ErrRoomAlreadyExists
	}

	left := s.leaveCurrentRoomLocked(user)

	room := newRoom(roomId, user)
	s.rooms[roomId] = room
	user.roomId = roomId

	room.mu.Lock()
	members := room.memberListLocked()
	room.mu.Unlock()
	s.mu.Unlock()

	s.broadcastMemberLeft(ctx, left)
	s.metrics.RoomCreated()
	s.logger.InfoContext(ctx, "room created", "room_id", roomId, "conn_id", params.ConnId)

	return CreateRoomResponse{RoomId: roomId, Members: members}, nil
}

type JoinRoomParams struct {
	ConnId string
	RoomId string
}

type JoinRoomResponse struct {
	RoomId  string   `json:"roomId"`
	Members []Member `json:"members"`
}

// JoinRoom adds the caller to an existing room, leaving its previous room
// first so a user never belongs to two rooms at once.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	s.mu.Lock()
	user, ok := s.users[params.ConnId]
	if !ok || !user.SocketConnected() {
		s.mu.Unlock()
		return JoinRoomResponse{}, ErrUserNotFound
	}

	room, ok := s.rooms[params.RoomId]
	if !ok {
		s.mu.Unlock()
		return JoinRoomResponse{}, ErrRoomNotFound
	}
	if user.roomId == params.RoomId {
		room.mu.Lock()
		members := room.memberListLocked()
		room.mu.Unlock()
		s.mu.Unlock()
		return JoinRoomResponse{RoomId: room.Id, Members: members}, nil
	}

	room.mu.Lock()
	if s.cfg.MembersLimit > 0 && len(room.members) >= s.cfg.MembersLimit {
		room.mu.Unlock()
		s.mu.Unlock()
		return JoinRoomResponse{}, ErrMembersLimitReached
	}
	room.mu.Unlock()

	left := s.leaveCurrentRoomLocked(user)

	room.mu.Lock()
	room.members = append(room.members, user)
	user.roomId = room.Id
	if room.creatorUserId != "" && user.UserId == room.creatorUserId {
		// the creator came back on a fresh connection
		room.creatorConnId = user.ConnId
	}
	members := room.memberListLocked()
	joined := Member{
		Id:        user.ConnId,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		IsCreator: user.ConnId == room.creatorConnId,
	}
	room.mu.Unlock()
	s.mu.Unlock()

	room.mu.Lock()
	s.broadcastLocked(ctx, room, EventMemberJoined, map[string]any{
		"member":  joined,
		"members": members,
	}, nil)
	room.mu.Unlock()

	s.broadcastMemberLeft(ctx, left)
	s.logger.InfoContext(ctx, "room joined", "room_id", room.Id, "conn_id", params.ConnId)

	return JoinRoomResponse{RoomId: room.Id, Members: members}, nil
}

type LeaveRoomParams struct {
	ConnId string
}

// LeaveRoom removes the caller from its current room, tearing the room
// down when it becomes empty.
func (s *service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) error {
	s.mu.Lock()
	user, ok := s.users[params.ConnId]
	if !ok {
		s.mu.Unlock()
		return ErrUserNotFound
	}
	if user.roomId == "" {
		s.mu.Unlock()
		return ErrNotInRoom
	}

	left := s.leaveCurrentRoomLocked(user)
	s.mu.Unlock()

	s.broadcastMemberLeft(ctx, left)
	s.logger.InfoContext(ctx, "room left", "conn_id", params.ConnId)

	return nil
}

// SetUserIdentity merges a verified oauth identity into the connected user.
// If the user created its current room, the room records the durable user id
// so the creator can reclaim the role from a later connection.
func (s *service) SetUserIdentity(ctx context.Context, connId, name, email, avatarURL, oauthId, oauthType, userId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[connId]
	if !ok {
		return ErrUserNotFound
	}

	user.Username = name
	user.Email = email
	user.AvatarURL = avatarURL
	user.OauthId = oauthId
	user.OauthType = oauthType
	user.UserId = userId

	if room := s.rooms[user.roomId]; room != nil {
		room.mu.Lock()
		if room.creatorConnId == connId {
			room.creatorUserId = userId
		}
		room.mu.Unlock()
	}

	return nil
}
