package redis

import (
	"context"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncroom/server/internal/repository/store"
)

func newTestRepo(t *testing.T) *repo {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, slog.Default())
}

func TestGetPlaylistStableId(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	first, err := r.GetPlaylist(ctx, "room1")
	require.NoError(t, err)
	require.NotEmpty(t, first.Id)

	second, err := r.GetPlaylist(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id, "repeated lookups must return the same playlist")

	other, err := r.GetPlaylist(ctx, "room2")
	require.NoError(t, err)
	assert.NotEqual(t, first.Id, other.Id, "rooms must not share playlists")
}

func TestInsertVideoKeepsOrder(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	playlist, err := r.GetPlaylist(ctx, "room1")
	require.NoError(t, err)

	for _, videoId := range []string{"aaa", "bbb", "ccc"} {
		require.NoError(t, r.InsertVideo(ctx, &store.InsertVideoParams{
			VideoId:    videoId,
			URL:        "https://youtu.be/" + videoId,
			PlaylistId: playlist.Id,
		}))
	}

	videos, err := r.GetPlaylistVideos(ctx, playlist.Id)
	require.NoError(t, err)
	require.Len(t, videos, 3)
	assert.Equal(t, "aaa", videos[0].Id)
	assert.Equal(t, "bbb", videos[1].Id)
	assert.Equal(t, "ccc", videos[2].Id)
	assert.Equal(t, "https://youtu.be/aaa", videos[0].URL)
	assert.Contains(t, videos[0].ThumbnailURL, "aaa")
}

func TestDeleteVideo(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	playlist, err := r.GetPlaylist(ctx, "room1")
	require.NoError(t, err)

	require.NoError(t, r.InsertVideo(ctx, &store.InsertVideoParams{
		VideoId:    "aaa",
		URL:        "https://youtu.be/aaa",
		PlaylistId: playlist.Id,
	}))

	require.NoError(t, r.DeleteVideo(ctx, &store.DeleteVideoParams{
		VideoId:    "aaa",
		PlaylistId: playlist.Id,
	}))

	videos, err := r.GetPlaylistVideos(ctx, playlist.Id)
	require.NoError(t, err)
	assert.Empty(t, videos)

	err = r.DeleteVideo(ctx, &store.DeleteVideoParams{
		VideoId:    "aaa",
		PlaylistId: playlist.Id,
	})
	assert.ErrorIs(t, err, store.ErrVideoNotFound)
}

func TestUpsertUserStableId(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	params := &store.UpsertUserParams{
		OauthId:   "ext-1",
		OauthType: "google",
		Name:      "Alice",
		Email:     "alice@example.com",
	}

	first, err := r.UpsertUser(ctx, params)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	params.Name = "Alice Updated"
	second, err := r.UpsertUser(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, first, second, "user id must survive repeated logins")

	user, err := r.GetUserByOauth(ctx, "google", "ext-1")
	require.NoError(t, err)
	assert.Equal(t, first, user.Id)
	assert.Equal(t, "Alice Updated", user.Name)

	_, err = r.GetUserByOauth(ctx, "google", "nobody")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
