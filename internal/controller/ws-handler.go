package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/service/login"
	"github.com/syncroom/server/internal/service/room"
	"github.com/syncroom/server/pkg/ctxlogger"
)

type Output struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

func (c *controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	connId, err := c.roomService.Connect(ctx, conn)
	if err != nil {
		c.logger.WarnContext(ctx, "connect failed", "error", err)
		return
	}

	ctx = ctxlogger.AppendCtx(ctx, slog.String("conn_id", connId))
	ctx = context.WithValue(ctx, connIdCtxKey, connId)

	if err := c.wsRouter.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}

	if err := c.roomService.Disconnect(context.WithoutCancel(ctx), connId); err != nil {
		c.logger.WarnContext(ctx, "disconnect failed", "error", err)
	}
}

// unmarshalInput decodes and validates a typed payload. Malformed payloads
// are dropped without an error surfaced to the room.
func (c *controller) unmarshalInput(ctx context.Context, payload json.RawMessage, input any) bool {
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, input); err != nil {
			c.logger.DebugContext(ctx, "malformed payload dropped", "error", err)
			return false
		}
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(ctx, "invalid payload dropped", "errors", validationErrors)
		return false
	}

	return true
}

// unmarshalRaw decodes a payload into the untyped map the sanitization
// helpers operate on.
func (c *controller) unmarshalRaw(ctx context.Context, payload json.RawMessage) (map[string]any, bool) {
	data := map[string]any{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &data); err != nil {
			c.logger.DebugContext(ctx, "malformed payload dropped", "error", err)
			return nil, false
		}
	}

	return data, true
}

func (c *controller) send(ctx context.Context, conn *websocket.Conn, out *Output) {
	if err := c.sender.Send(conn, out); err != nil {
		c.logger.WarnContext(ctx, "failed to send", "event", out.Event, "error", err)
	}
}

// sendError answers the requester with a generic failure status; the cause
// stays in the server log.
func (c *controller) sendError(ctx context.Context, conn *websocket.Conn, err error) {
	c.logger.DebugContext(ctx, "operation failed", "error", err)
	c.send(ctx, conn, &Output{
		Event: "error",
		Payload: map[string]any{
			"status": "fail",
		},
	})
}

// resumeSession restores the session behind an optional token before a room
// operation runs. A stale or forged token never blocks the operation; the
// caller simply stays a guest.
func (c *controller) resumeSession(ctx context.Context, token string) {
	if token == "" {
		return
	}

	if err := c.loginService.Resume(ctx, &login.ResumeParams{
		ConnId: c.getConnIdFromCtx(ctx),
		Token:  token,
	}); err != nil {
		c.logger.DebugContext(ctx, "session resume rejected", "error", err)
	}
}

type RoomCreateInput struct {
	RoomId string `json:"roomId" validate:"omitempty,min=4,max=32"`
	Token  string `json:"token"`
}

func (c *controller) handleRoomCreate(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input RoomCreateInput
	if !c.unmarshalInput(ctx, payload, &input) {
		return nil
	}

	c.resumeSession(ctx, input.Token)

	resp, err := c.roomService.CreateRoom(ctx, &room.CreateRoomParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
	})
	if err != nil {
		c.sendError(ctx, conn, err)
		return fmt.Errorf("failed to create room: %w", err)
	}

	c.send(ctx, conn, &Output{Event: "room_joined", Payload: resp})

	return nil
}

type RoomJoinInput struct {
	RoomId string `json:"roomId" validate:"required,min=4,max=32"`
	Token  string `json:"token"`
}

func (c *controller) handleRoomJoin(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input RoomJoinInput
	if !c.unmarshalInput(ctx, payload, &input) {
		return nil
	}

	c.resumeSession(ctx, input.Token)

	resp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
	})
	if err != nil {
		c.sendError(ctx, conn, err)
		return fmt.Errorf("failed to join room: %w", err)
	}

	c.send(ctx, conn, &Output{Event: "room_joined", Payload: resp})

	return nil
}

func (c *controller) handleRoomLeave(ctx context.Context, conn *websocket.Conn, _ json.RawMessage) error {
	if err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		ConnId: c.getConnIdFromCtx(ctx),
	}); err != nil {
		c.sendError(ctx, conn, err)
		return fmt.Errorf("failed to leave room: %w", err)
	}

	return nil
}

func (c *controller) handleRoomSettingsGet(ctx context.Context, conn *websocket.Conn, _ json.RawMessage) error {
	settings, err := c.roomService.GetRoomSettings(ctx, &room.GetRoomSettingsParams{
		ConnId: c.getConnIdFromCtx(ctx),
	})
	if err != nil {
		c.sendError(ctx, conn, err)
		return fmt.Errorf("failed to get room settings: %w", err)
	}

	c.send(ctx, conn, &Output{Event: "room_settings", Payload: map[string]any{"settings": settings}})

	return nil
}

type RoomSettingsSetInput struct {
	HostMode             bool `json:"hostMode"`
	VoteThreshold        int  `json:"voteThreshold" validate:"min=0"`
	VoteThresholdPercent bool `json:"voteThresholdPercent"`
}

func (c *controller) handleRoomSettingsSet(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var input RoomSettingsSetInput
	if !c.unmarshalInput(ctx, payload, &input) {
		return nil
	}

	return c.roomService.SetRoomSettings(ctx, &room.SetRoomSettingsParams{
		ConnId: c.getConnIdFromCtx(ctx),
		Settings: room.Settings{
			HostMode:             input.HostMode,
			VoteThreshold:        input.VoteThreshold,
			VoteThresholdPercent: input.VoteThresholdPercent,
		},
	})
}

type YtLoadInput struct {
	URL string `json:"url" validate:"required"`
}

func (c *controller) handleYtLoad(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var input YtLoadInput
	if !c.unmarshalInput(ctx, payload, &input) {
		return nil
	}

	return c.roomService.LoadVideo(ctx, &room.LoadVideoParams{
		ConnId: c.getConnIdFromCtx(ctx),
		URL:    input.URL,
	})
}

func (c *controller) handleYtStateChange(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	data, ok := c.unmarshalRaw(ctx, payload)
	if !ok {
		return nil
	}

	return c.roomService.ChangePlayerState(ctx, &room.ChangePlayerStateParams{
		ConnId: c.getConnIdFromCtx(ctx),
		Data:   data,
	})
}

func (c *controller) handleYtSphereUpdate(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	data, ok := c.unmarshalRaw(ctx, payload)
	if !ok {
		return nil
	}

	return c.roomService.UpdateSphere(ctx, &room.UpdateSphereParams{
		ConnId: c.getConnIdFromCtx(ctx),
		Data:   data,
	})
}

type YtQueueInput struct {
	RoomId string `json:"roomId" validate:"required"`
	URL    string `json:"url" validate:"required"`
}

func (c *controller) handleYtEnqueue(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input YtQueueInput
	if !c.unmarshalInput(ctx, payload, &input) {
		return nil
	}

	if err := c.roomService.EnqueueVideo(ctx, &room.EnqueueVideoParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
		URL:    input.URL,
	}); err != nil {
		c.sendError(ctx, conn, err)
		return fmt.Errorf("failed to enqueue video: %w", err)
	}

	return nil
}

func (c *controller) handleYtDequeue(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input YtQueueInput
	if !c.unmarshalInput(ctx, payload, &input) {
		return nil
	}

	if err := c.roomService.DequeueVideo(ctx, &room.DequeueVideoParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
		URL:    input.URL,
	}); err != nil {
		c.sendError(ctx, conn, err)
		return fmt.Errorf("failed to dequeue video: %w", err)
	}

	return nil
}

func (c *controller) handleLogin(provider string) func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	return func(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
		data, ok := c.unmarshalRaw(ctx, payload)
		if !ok {
			return nil
		}

		return c.loginService.Login(ctx, &login.LoginParams{
			ConnId:   c.getConnIdFromCtx(ctx),
			Provider: provider,
			Payload:  data,
		})
	}
}
