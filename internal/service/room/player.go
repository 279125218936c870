package room

import (
	"context"

	"github.com/syncroom/server/pkg/syncval"
	"github.com/syncroom/server/pkg/ytvideoid"
)

// floatField extracts and sanitizes one numeric field from untyped input.
func floatField(data map[string]any, path string, guard syncval.Guard, fix syncval.Fixer, def float64) float64 {
	v := syncval.Coerce(syncval.ExtractField(data, path, def), guard, fix, def)
	f, err := syncval.ToFloat64(v)
	if err != nil {
		return def
	}

	return f
}

func intField(data map[string]any, path string, guard syncval.Guard, fix syncval.Fixer, def int) int {
	v := syncval.Coerce(syncval.ExtractField(data, path, def), guard, fix, def)
	i, err := syncval.ToInt(v)
	if err != nil {
		return def
	}

	return i
}

type LoadVideoParams struct {
	ConnId string
	URL    string
}

// LoadVideo sets the room's current video and announces it to every member,
// sender included. Malformed urls and unauthorized senders are dropped
// without a broadcast.
func (s *service) LoadVideo(ctx context.Context, params *LoadVideoParams) error {
	user, room, ok := s.resolveMemberRoom(params.ConnId)
	if !ok {
		s.metrics.EventDropped("no_room")
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.hostModeLocked() && !room.isCreatorLocked(user) {
		s.metrics.EventDropped("host_gate")
		return nil
	}

	videoId, ok := ytvideoid.Extract(params.URL)
	if !ok {
		s.metrics.EventDropped("bad_video_url")
		s.logger.DebugContext(ctx, "video url rejected", "room_id", room.Id, "url", params.URL)
		return nil
	}

	if !user.SocketConnected() {
		s.metrics.EventDropped("disconnected")
		return nil
	}

	room.currentVideoId = videoId

	s.broadcastLocked(ctx, room, EventVideoLoaded, map[string]any{
		"videoId": videoId,
	}, nil)

	return nil
}

type ChangePlayerStateParams struct {
	ConnId string
	Data   map[string]any
}

// StateChangedPayload echoes the sender so clients can tell local from
// remote playback changes.
type StateChangedPayload struct {
	State     PlayerState `json:"state"`
	Sender    string      `json:"sender"`
	Offset    float64     `json:"offset"`
	Rate      float64     `json:"rate"`
	RunAt     int         `json:"runAt"`
	Timestamp int         `json:"timestamp"`
}

// ChangePlayerState validates a playback transition and fans it out to
// every member, sender included. A state outside the closed enum drops the
// whole operation; malformed numeric fields degrade to their defaults.
func (s *service) ChangePlayerState(ctx context.Context, params *ChangePlayerStateParams) error {
	user, room, ok := s.resolveMemberRoom(params.ConnId)
	if !ok {
		s.metrics.EventDropped("no_room")
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.hostModeLocked() && !room.isCreatorLocked(user) {
		s.metrics.EventDropped("host_gate")
		return nil
	}

	offset := floatField(params.Data, "offset", syncval.IsFloat64, syncval.AbsFloat, 0)
	rate := floatField(params.Data, "rate", syncval.IsFloat64, syncval.AbsFloat, 1)
	runAt := intField(params.Data, "runAt", syncval.IsInt, syncval.NonNegInt, 0)
	timestamp := intField(params.Data, "timestamp", syncval.IsInt, syncval.IntCast, int(s.nowFn().Unix()))

	state, _ := syncval.ExtractField(params.Data, "state", "").(string)
	if !PlayerState(state).Valid() {
		s.metrics.EventDropped("bad_state")
		s.logger.DebugContext(ctx, "playback state rejected", "room_id", room.Id, "state", state)
		return nil
	}

	if !user.SocketConnected() {
		s.metrics.EventDropped("disconnected")
		return nil
	}

	room.player = PlayerSnapshot{
		State:     PlayerState(state),
		Offset:    offset,
		Rate:      rate,
		RunAt:     runAt,
		Timestamp: timestamp,
	}

	s.broadcastLocked(ctx, room, EventStateChanged, &StateChangedPayload{
		State:     PlayerState(state),
		Sender:    user.Username,
		Offset:    offset,
		Rate:      rate,
		RunAt:     runAt,
		Timestamp: timestamp,
	}, nil)

	return nil
}
