package room

import (
	"context"

	"github.com/syncroom/server/pkg/syncval"
)

type UpdateSphereParams struct {
	ConnId string
	Data   map[string]any
}

// UpdateSphere replaces the room's viewing orientation and fans it out to
// every member except the sender. Out-of-range values are clamped into
// range rather than dropped.
//
// Sphere sync does not work well with peer-sync mode, so only the creator
// may send it regardless of the host mode setting.
func (s *service) UpdateSphere(ctx context.Context, params *UpdateSphereParams) error {
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

	sphere := SphereProperties{
		Yaw:   floatField(params.Data, "properties.yaw", syncval.FloatInRange(0, 360, true), syncval.ClampFloat(0, 360), 0),
		Pitch: floatField(params.Data, "properties.pitch", syncval.FloatInRange(-90, 90, false), syncval.ClampFloat(-90, 90), 0),
		Roll:  floatField(params.Data, "properties.roll", syncval.FloatInRange(-180, 180, false), syncval.ClampFloat(-180, 180), 0),
		Fov:   floatField(params.Data, "properties.fov", syncval.FloatInRange(30, 120, false), syncval.ClampFloat(30, 120), 100),
	}

	if !user.SocketConnected() {
		s.metrics.EventDropped("disconnected")
		return nil
	}

	room.sphere = sphere

	s.broadcastLocked(ctx, room, EventSphereUpdated, map[string]any{
		"properties": sphere,
	}, user)

	return nil
}
