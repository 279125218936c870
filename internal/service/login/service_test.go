package login

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/server/internal/repository/store"
)

type fakeVerifier struct {
	identity *Identity
	err      error
}

func (f *fakeVerifier) Verify(ctx context.Context, payload map[string]any) (*Identity, error) {
	return f.identity, f.err
}

type fakeStore struct {
	userId string
	err    error
	params *store.UpsertUserParams

	user   store.User
	getErr error
}

func (f *fakeStore) UpsertUser(ctx context.Context, params *store.UpsertUserParams) (string, error) {
	f.params = params
	return f.userId, f.err
}

func (f *fakeStore) GetUserByOauth(ctx context.Context, oauthType, oauthId string) (store.User, error) {
	if f.getErr != nil {
		return store.User{}, f.getErr
	}
	return f.user, nil
}

type fakeDirectory struct {
	connId    string
	name      string
	oauthType string
	userId    string
}

func (f *fakeDirectory) SetUserIdentity(ctx context.Context, connId, name, email, avatarURL, oauthId, oauthType, userId string) error {
	f.connId = connId
	f.name = name
	f.oauthType = oauthType
	f.userId = userId
	return nil
}

type sentResponse struct {
	conn *websocket.Conn
	resp *Response
}

type fakeConnRepo struct {
	conns map[string]*websocket.Conn
	sent  []sentResponse
}

func (f *fakeConnRepo) GetConn(connId string) (*websocket.Conn, error) {
	conn, ok := f.conns[connId]
	if !ok {
		return nil, errors.New("connection not found")
	}
	return conn, nil
}

func (f *fakeConnRepo) Send(conn *websocket.Conn, v any) error {
	msg, ok := v.(*message)
	if !ok {
		return nil
	}
	f.sent = append(f.sent, sentResponse{conn, msg.Payload.(*Response)})

	return nil
}

func newConnRepo(connId string) (*fakeConnRepo, *websocket.Conn) {
	conn := &websocket.Conn{}
	return &fakeConnRepo{conns: map[string]*websocket.Conn{connId: conn}}, conn
}

func TestLoginOk(t *testing.T) {
	storeRepo := &fakeStore{userId: "user-1"}
	directory := &fakeDirectory{}
	connRepo, conn := newConnRepo("conn-1")

	svc := NewService(storeRepo, directory, connRepo, "test-secret", slog.Default())
	svc.RegisterVerifier("google", &fakeVerifier{identity: &Identity{
		ExternalId: "ext-1",
		Name:       "Alice",
		Email:      "alice@example.com",
	}})

	require.NoError(t, svc.Login(context.Background(), &LoginParams{
		ConnId:   "conn-1",
		Provider: "google",
		Payload:  map[string]any{},
	}))

	require.Len(t, connRepo.sent, 1, "exactly one response, to the requester only")
	assert.Same(t, conn, connRepo.sent[0].conn)

	resp := connRepo.sent[0].resp
	assert.Equal(t, StatusOk, resp.Status)
	assert.Equal(t, "user-1", resp.UserId)
	require.NotEmpty(t, resp.Token)

	claims, err := svc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserId)
	assert.Equal(t, "google", claims.Provider)
	assert.Equal(t, "ext-1", claims.OauthId)

	assert.Equal(t, "ext-1", storeRepo.params.OauthId)
	assert.Equal(t, "google", storeRepo.params.OauthType)
	assert.Equal(t, "conn-1", directory.connId)
	assert.Equal(t, "Alice", directory.name)
	assert.Equal(t, "user-1", directory.userId)
}

func TestLoginVerificationFailure(t *testing.T) {
	storeRepo := &fakeStore{userId: "user-1"}
	directory := &fakeDirectory{}
	connRepo, conn := newConnRepo("conn-1")

	svc := NewService(storeRepo, directory, connRepo, "test-secret", slog.Default())
	svc.RegisterVerifier("google", &fakeVerifier{err: errors.New("token rejected")})

	require.NoError(t, svc.Login(context.Background(), &LoginParams{
		ConnId:   "conn-1",
		Provider: "google",
		Payload:  map[string]any{},
	}))

	require.Len(t, connRepo.sent, 1)
	assert.Same(t, conn, connRepo.sent[0].conn)
	assert.Equal(t, StatusFail, connRepo.sent[0].resp.Status)
	assert.Empty(t, connRepo.sent[0].resp.Token)

	assert.Nil(t, storeRepo.params, "a failed verification must not touch the store")
	assert.Empty(t, directory.connId, "a failed verification must not touch the user")
}

func TestLoginUnknownProvider(t *testing.T) {
	connRepo, _ := newConnRepo("conn-1")
	svc := NewService(&fakeStore{}, &fakeDirectory{}, connRepo, "test-secret", slog.Default())

	err := svc.Login(context.Background(), &LoginParams{
		ConnId:   "conn-1",
		Provider: "myspace",
		Payload:  map[string]any{},
	})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	require.Len(t, connRepo.sent, 1)
	assert.Equal(t, StatusFail, connRepo.sent[0].resp.Status)
}

func TestLoginStoreFailure(t *testing.T) {
	storeRepo := &fakeStore{err: errors.New("redis down")}
	directory := &fakeDirectory{}
	connRepo, _ := newConnRepo("conn-1")

	svc := NewService(storeRepo, directory, connRepo, "test-secret", slog.Default())
	svc.RegisterVerifier("twitter", &fakeVerifier{identity: &Identity{ExternalId: "ext-2"}})

	require.NoError(t, svc.Login(context.Background(), &LoginParams{
		ConnId:   "conn-1",
		Provider: "twitter",
		Payload:  map[string]any{},
	}))

	require.Len(t, connRepo.sent, 1)
	assert.Equal(t, StatusFail, connRepo.sent[0].resp.Status)
	assert.Empty(t, directory.connId)
}

func TestResume(t *testing.T) {
	storeRepo := &fakeStore{user: store.User{
		Id:        "user-1",
		Name:      "Alice",
		Email:     "alice@example.com",
		OauthId:   "ext-1",
		OauthType: "google",
	}}
	directory := &fakeDirectory{}
	connRepo, _ := newConnRepo("conn-1")

	svc := NewService(storeRepo, directory, connRepo, "test-secret", slog.Default())

	token, err := svc.generateToken("user-1", "google", "ext-1")
	require.NoError(t, err)

	require.NoError(t, svc.Resume(context.Background(), &ResumeParams{ConnId: "conn-2", Token: token}))
	assert.Equal(t, "conn-2", directory.connId)
	assert.Equal(t, "user-1", directory.userId)
	assert.Equal(t, "Alice", directory.name)
	assert.Equal(t, "google", directory.oauthType)
}

func TestResumeBadToken(t *testing.T) {
	directory := &fakeDirectory{}
	connRepo, _ := newConnRepo("conn-1")
	svc := NewService(&fakeStore{}, directory, connRepo, "test-secret", slog.Default())

	err := svc.Resume(context.Background(), &ResumeParams{ConnId: "conn-2", Token: "garbage"})
	assert.Error(t, err)
	assert.Empty(t, directory.connId, "an invalid token must not touch the user")
}

func TestResumeUnknownUser(t *testing.T) {
	storeRepo := &fakeStore{getErr: store.ErrUserNotFound}
	directory := &fakeDirectory{}
	connRepo, _ := newConnRepo("conn-1")
	svc := NewService(storeRepo, directory, connRepo, "test-secret", slog.Default())

	token, err := svc.generateToken("user-1", "google", "ext-1")
	require.NoError(t, err)

	err = svc.Resume(context.Background(), &ResumeParams{ConnId: "conn-2", Token: token})
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	assert.Empty(t, directory.connId)
}

func TestParseTokenWrongSecret(t *testing.T) {
	connRepo, _ := newConnRepo("conn-1")
	svc := NewService(&fakeStore{}, &fakeDirectory{}, connRepo, "secret-a", slog.Default())
	token, err := svc.generateToken("user-1", "google", "ext-1")
	require.NoError(t, err)

	otherRepo, _ := newConnRepo("conn-1")
	other := NewService(&fakeStore{}, &fakeDirectory{}, otherRepo, "secret-b", slog.Default())
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsForeignAlgorithm(t *testing.T) {
	connRepo, _ := newConnRepo("conn-1")
	svc := NewService(&fakeStore{}, &fakeDirectory{}, connRepo, "test-secret", slog.Default())

	token := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.MapClaims{"user_id": "user-1"})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ParseToken(signed)
	assert.Error(t, err, "tokens signed with any other algorithm must be rejected")
}
