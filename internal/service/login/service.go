// Package login consumes verified oauth identities and binds them to
// connected users. Verification itself is delegated to per-provider
// verifiers; this service only trusts their result.
package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/syncroom/server/internal/repository/store"
)

var ErrUnknownProvider = errors.New("unknown oauth provider")

const (
	StatusOk   = "ok"
	StatusFail = "fail"
)

// Identity is the verified result every provider reduces to.
type Identity struct {
	ExternalId string
	Name       string
	Email      string
	AvatarURL  string
}

type iVerifier interface {
	Verify(ctx context.Context, payload map[string]any) (*Identity, error)
}

type iStore interface {
	UpsertUser(ctx context.Context, params *store.UpsertUserParams) (string, error)
	GetUserByOauth(ctx context.Context, oauthType, oauthId string) (store.User, error)
}

type iUserDirectory interface {
	SetUserIdentity(ctx context.Context, connId, name, email, avatarURL, oauthId, oauthType, userId string) error
}

type iConnRepo interface {
	GetConn(connId string) (*websocket.Conn, error)
	Send(conn *websocket.Conn, v any) error
}

type message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Response goes to the requesting connection only, never broadcast.
type Response struct {
	Status string `json:"status"`
	UserId string `json:"userId,omitempty"`
	Token  string `json:"token,omitempty"`
}

type service struct {
	verifiers map[string]iVerifier
	store     iStore
	users     iUserDirectory
	connRepo  iConnRepo
	secret    string
	logger    *slog.Logger
}

func NewService(store iStore, users iUserDirectory, connRepo iConnRepo, secret string, logger *slog.Logger) *service {
	return &service{
		verifiers: make(map[string]iVerifier),
		store:     store,
		users:     users,
		connRepo:  connRepo,
		secret:    secret,
		logger:    logger,
	}
}

func (s *service) RegisterVerifier(provider string, v iVerifier) {
	s.verifiers[provider] = v
}

type LoginParams struct {
	ConnId   string
	Provider string
	Payload  map[string]any
}

// Login verifies the provider payload and merges the identity into the
// requesting user. Both verifier and store failures answer the requester
// with a fail status and leave all room state untouched.
func (s *service) Login(ctx context.Context, params *LoginParams) error {
	verifier, ok := s.verifiers[params.Provider]
	if !ok {
		s.respond(ctx, params.ConnId, &Response{Status: StatusFail})
		return fmt.Errorf("%w: %s", ErrUnknownProvider, params.Provider)
	}

	identity, err := verifier.Verify(ctx, params.Payload)
	if err != nil {
		s.logger.InfoContext(ctx, "login verification failed",
			"provider", params.Provider, "conn_id", params.ConnId, "error", err)
		s.respond(ctx, params.ConnId, &Response{Status: StatusFail})
		return nil
	}

	userId, err := s.store.UpsertUser(ctx, &store.UpsertUserParams{
		OauthId:   identity.ExternalId,
		OauthType: params.Provider,
		Name:      identity.Name,
		Email:     identity.Email,
		AvatarURL: identity.AvatarURL,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "user upsert failed",
			"provider", params.Provider, "conn_id", params.ConnId, "error", err)
		s.respond(ctx, params.ConnId, &Response{Status: StatusFail})
		return nil
	}

	if err := s.users.SetUserIdentity(ctx, params.ConnId,
		identity.Name, identity.Email, identity.AvatarURL,
		identity.ExternalId, params.Provider, userId,
	); err != nil {
		s.respond(ctx, params.ConnId, &Response{Status: StatusFail})
		return nil
	}

	token, err := s.generateToken(userId, params.Provider, identity.ExternalId)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		"provider", params.Provider, "conn_id", params.ConnId, "user_id", userId)
	s.respond(ctx, params.ConnId, &Response{
		Status: StatusOk,
		UserId: userId,
		Token:  token,
	})

	return nil
}

type ResumeParams struct {
	ConnId string
	Token  string
}

// Resume restores a previously issued session onto a fresh connection. The
// stored profile is looked up by the oauth identity inside the token, so a
// token for a user that no longer exists fails the same way a forged one
// does.
func (s *service) Resume(ctx context.Context, params *ResumeParams) error {
	claims, err := s.ParseToken(params.Token)
	if err != nil {
		return fmt.Errorf("invalid session token: %w", err)
	}

	user, err := s.store.GetUserByOauth(ctx, claims.Provider, claims.OauthId)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.users.SetUserIdentity(ctx, params.ConnId,
		user.Name, user.Email, user.AvatarURL,
		user.OauthId, user.OauthType, user.Id,
	); err != nil {
		return fmt.Errorf("failed to set user identity: %w", err)
	}

	s.logger.InfoContext(ctx, "session resumed", "conn_id", params.ConnId, "user_id", user.Id)

	return nil
}

func (s *service) respond(ctx context.Context, connId string, resp *Response) {
	conn, err := s.connRepo.GetConn(connId)
	if err != nil {
		s.logger.DebugContext(ctx, "login response dropped, connection gone", "conn_id", connId)
		return
	}

	if err := s.connRepo.Send(conn, &message{Event: "login_response", Payload: resp}); err != nil {
		s.logger.WarnContext(ctx, "failed to send login response", "error", err)
	}
}
