package room

import "context"

type GetRoomSettingsParams struct {
	ConnId string
}

// GetRoomSettings returns the settings of the caller's room.
func (s *service) GetRoomSettings(ctx context.Context, params *GetRoomSettingsParams) (Settings, error) {
	_, room, ok := s.resolveMemberRoom(params.ConnId)
	if !ok {
		return Settings{}, ErrNotInRoom
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	return room.settings, nil
}

type SetRoomSettingsParams struct {
	ConnId   string
	Settings Settings
}

// SetRoomSettings replaces the room settings and announces them. Only the
// creator may change settings; anyone else is dropped silently, the same
// as any other authorization failure.
func (s *service) SetRoomSettings(ctx context.Context, params *SetRoomSettingsParams) error {
	user, room, ok := s.resolveMemberRoom(params.ConnId)
	if !ok {
		s.metrics.EventDropped("no_room")
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !room.isCreatorLocked(user) {
		s.metrics.EventDropped("host_gate")
		return nil
	}

	room.settings = params.Settings

	s.broadcastLocked(ctx, room, EventRoomSettings, map[string]any{
		"settings": room.settings,
	}, nil)

	return nil
}
