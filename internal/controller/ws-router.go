package controller

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/pkg/wsrouter"
)

// Inbound events. The set is closed: anything else is dropped by the
// router.
const (
	eventRoomCreate      = "room_create"
	eventRoomJoin        = "room_join"
	eventRoomLeave       = "room_leave"
	eventRoomSettingsGet = "room_settings_get"
	eventRoomSettingsSet = "room_settings_set"
	eventYtLoad          = "yt_load"
	eventYtStateChange   = "yt_state_change"
	eventYtSphereUpdate  = "yt_sphere_update"
	eventYtEnqueue       = "yt_enqueue"
	eventYtDequeue       = "yt_dequeue"
	eventLoginGoogle     = "login_oauth_google"
	eventLoginFacebook   = "login_oauth_facebook"
	eventLoginTwitter    = "login_oauth_twitter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New(c.logger)

	// room
	mux.Handle(eventRoomCreate, c.counted(eventRoomCreate, c.handleRoomCreate))
	mux.Handle(eventRoomJoin, c.counted(eventRoomJoin, c.handleRoomJoin))
	mux.Handle(eventRoomLeave, c.counted(eventRoomLeave, c.handleRoomLeave))
	mux.Handle(eventRoomSettingsGet, c.counted(eventRoomSettingsGet, c.handleRoomSettingsGet))
	mux.Handle(eventRoomSettingsSet, c.counted(eventRoomSettingsSet, c.handleRoomSettingsSet))

	// playback
	mux.Handle(eventYtLoad, c.counted(eventYtLoad, c.handleYtLoad))
	mux.Handle(eventYtStateChange, c.counted(eventYtStateChange, c.handleYtStateChange))
	mux.Handle(eventYtSphereUpdate, c.counted(eventYtSphereUpdate, c.handleYtSphereUpdate))
	mux.Handle(eventYtEnqueue, c.counted(eventYtEnqueue, c.handleYtEnqueue))
	mux.Handle(eventYtDequeue, c.counted(eventYtDequeue, c.handleYtDequeue))

	// login
	mux.Handle(eventLoginGoogle, c.counted(eventLoginGoogle, c.handleLogin("google")))
	mux.Handle(eventLoginFacebook, c.counted(eventLoginFacebook, c.handleLogin("facebook")))
	mux.Handle(eventLoginTwitter, c.counted(eventLoginTwitter, c.handleLogin("twitter")))

	return mux
}

func (c *controller) counted(event string, h wsrouter.HandlerFunc) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		c.metrics.EventHandled(event)
		return h(ctx, conn, payload)
	}
}
