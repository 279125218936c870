package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/syncroom/server/internal/service/login"
	"github.com/syncroom/server/internal/service/room"
	"github.com/syncroom/server/pkg/validator"
	"github.com/syncroom/server/pkg/wsrouter"
)

type iRoomService interface {
	Connect(ctx context.Context, conn *websocket.Conn) (string, error)
	Disconnect(ctx context.Context, connId string) error
	CreateRoom(ctx context.Context, params *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(ctx context.Context, params *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(ctx context.Context, params *room.LeaveRoomParams) error
	GetRoomSettings(ctx context.Context, params *room.GetRoomSettingsParams) (room.Settings, error)
	SetRoomSettings(ctx context.Context, params *room.SetRoomSettingsParams) error
	LoadVideo(ctx context.Context, params *room.LoadVideoParams) error
	ChangePlayerState(ctx context.Context, params *room.ChangePlayerStateParams) error
	UpdateSphere(ctx context.Context, params *room.UpdateSphereParams) error
	EnqueueVideo(ctx context.Context, params *room.EnqueueVideoParams) error
	DequeueVideo(ctx context.Context, params *room.DequeueVideoParams) error
}

type iLoginService interface {
	Login(ctx context.Context, params *login.LoginParams) error
	Resume(ctx context.Context, params *login.ResumeParams) error
}

type iSender interface {
	Send(conn *websocket.Conn, v any) error
}

type iMetrics interface {
	EventHandled(event string)
}

type controller struct {
	roomService  iRoomService
	loginService iLoginService
	sender       iSender
	metrics      iMetrics
	gatherer     prometheus.Gatherer
	upgrader     websocket.Upgrader
	validate     *validator.Validator
	wsRouter     *wsrouter.WSRouter
	logger       *slog.Logger
}

func NewController(
	roomService iRoomService,
	loginService iLoginService,
	sender iSender,
	metrics iMetrics,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *controller {
	c := &controller{
		roomService:  roomService,
		loginService: loginService,
		sender:       sender,
		metrics:      metrics,
		gatherer:     gatherer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
	}
	c.wsRouter = c.getWSRouter()

	return c
}
