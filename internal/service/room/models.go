package room

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Broadcast events emitted to room members.
const (
	EventVideoLoaded   = "yt_load"
	EventStateChanged  = "yt_state_change"
	EventSphereUpdated = "yt_sphere_update"
	EventPlaylist      = "yt_playlist"
	EventMemberJoined  = "member_joined"
	EventMemberLeft    = "member_left"
	EventRoomSettings  = "room_settings"
)

// Message is the envelope every outbound event is wrapped in.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// PlayerState is the closed set of playback states a client may report.
type PlayerState string

const (
	PlayerStateReady     PlayerState = "ready"
	PlayerStateUnstarted PlayerState = "unstarted"
	PlayerStateEnded     PlayerState = "ended"
	PlayerStatePlaying   PlayerState = "playing"
	PlayerStatePaused    PlayerState = "paused"
	PlayerStateBuffering PlayerState = "buffering"
	PlayerStateCued      PlayerState = "cued"
	PlayerStatePlayback  PlayerState = "playback"
)

func (s PlayerState) Valid() bool {
	switch s {
	case PlayerStateReady, PlayerStateUnstarted, PlayerStateEnded,
		PlayerStatePlaying, PlayerStatePaused, PlayerStateBuffering,
		PlayerStateCued, PlayerStatePlayback:
		return true
	default:
		return false
	}
}

// PlayerSnapshot is the shared playback timeline of a room.
type PlayerSnapshot struct {
	State     PlayerState `json:"state"`
	Offset    float64     `json:"offset"`
	Rate      float64     `json:"rate"`
	RunAt     int         `json:"runAt"`
	Timestamp int         `json:"timestamp"`
}

// SphereProperties is the shared 3D viewing orientation of a room. Fields
// are always within their clamped ranges.
type SphereProperties struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
	Fov   float64 `json:"fov"`
}

func defaultSphere() SphereProperties {
	return SphereProperties{Fov: 100}
}

// Settings are the host-controlled room options.
type Settings struct {
	HostMode             bool `json:"hostMode"`
	VoteThreshold        int  `json:"voteThreshold"`
	VoteThresholdPercent bool `json:"voteThresholdPercent"`
}

// User is a connected participant. A user belongs to at most one room;
// roomId is the back-reference and is guarded by the service registry lock.
type User struct {
	ConnId    string
	Conn      *websocket.Conn
	Username  string
	Email     string
	AvatarURL string
	OauthId   string
	OauthType string
	UserId    string

	LastDisconnectAt *time.Time

	connected atomic.Bool
	roomId    string
}

// SocketConnected reports whether the user's connection is still open. Safe
// to call from any goroutine.
func (u *User) SocketConnected() bool {
	return u.connected.Load()
}

// Member is the broadcast-safe view of a user.
type Member struct {
	Id        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
	IsCreator bool   `json:"isCreator"`
}

// Room is a named group of users sharing one playback timeline and one
// orientation state.
//
// Lock discipline: the service registry lock guards the rooms map, every
// user's roomId and membership mutation; r.mu guards members reads, the
// playback/sphere snapshots, settings and currentVideoId, and serializes
// each mutation with its broadcast. The registry lock may be held while
// acquiring r.mu, never the other way around.
type Room struct {
	Id string

	mu             sync.Mutex
	members        []*User
	creatorConnId  string
	creatorUserId  string
	settings       Settings
	currentVideoId string
	player         PlayerSnapshot
	sphere         SphereProperties
}

func newRoom(id string, creator *User) *Room {
	return &Room{
		Id:            id,
		members:       []*User{creator},
		creatorConnId: creator.ConnId,
		creatorUserId: creator.UserId,
		settings:      Settings{HostMode: true},
		player:        PlayerSnapshot{State: PlayerStateUnstarted, Rate: 1},
		sphere:        defaultSphere(),
	}
}

// isCreatorLocked reports whether u created the room. Caller holds r.mu.
func (r *Room) isCreatorLocked(u *User) bool {
	return r.creatorConnId == u.ConnId
}

// hostModeLocked reports whether only the creator may drive playback.
// Caller holds r.mu.
func (r *Room) hostModeLocked() bool {
	return r.settings.HostMode
}

// memberListLocked returns members in join order. Caller holds r.mu.
func (r *Room) memberListLocked() []Member {
	members := make([]Member, 0, len(r.members))
	for _, u := range r.members {
		members = append(members, Member{
			Id:        u.ConnId,
			Username:  u.Username,
			AvatarURL: u.AvatarURL,
			IsCreator: u.ConnId == r.creatorConnId,
		})
	}

	return members
}

// removeMemberLocked removes u from the member list, reporting whether it
// was present. Caller holds the registry lock and r.mu.
func (r *Room) removeMemberLocked(u *User) bool {
	for i, member := range r.members {
		if member == u {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return true
		}
	}

	return false
}
