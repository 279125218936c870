package redis

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/syncroom/server/internal/repository/store"
	"github.com/syncroom/server/pkg/ytvideoid"
)

func (r repo) getRoomPlaylistKey(roomId string) string {
	return "room:" + roomId + ":playlist"
}

func (r repo) getPlaylistVideosKey(playlistId string) string {
	return "playlist:" + playlistId + ":videos"
}

func (r repo) getVideoKey(playlistId, videoId string) string {
	return "playlist:" + playlistId + ":video:" + videoId
}

// GetPlaylist resolves the room's active playlist, creating one on first
// access.
func (r repo) GetPlaylist(ctx context.Context, roomId string) (store.Playlist, error) {
	key := r.getRoomPlaylistKey(roomId)

	playlistId, err := r.rc.Get(ctx, key).Result()
	if err == nil {
		return store.Playlist{Id: playlistId}, nil
	}
	if !errors.Is(err, redis.Nil) {
		return store.Playlist{}, err
	}

	playlistId = uuid.NewString()
	set, err := r.rc.SetNX(ctx, key, playlistId, 0).Result()
	if err != nil {
		return store.Playlist{}, err
	}
	if !set {
		// lost the race, another caller created it first
		playlistId, err = r.rc.Get(ctx, key).Result()
		if err != nil {
			return store.Playlist{}, err
		}
	}

	return store.Playlist{Id: playlistId}, nil
}

func (r repo) InsertVideo(ctx context.Context, params *store.InsertVideoParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	r.addWithIncrement(ctx, pipe, r.getPlaylistVideosKey(params.PlaylistId), params.VideoId)
	pipe.HSet(ctx, r.getVideoKey(params.PlaylistId, params.VideoId), "url", params.URL)

	return r.executePipe(ctx, pipe)
}

func (r repo) DeleteVideo(ctx context.Context, params *store.DeleteVideoParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)

	removed, err := r.rc.ZRem(ctx, r.getPlaylistVideosKey(params.PlaylistId), params.VideoId).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return store.ErrVideoNotFound
	}

	return r.rc.Del(ctx, r.getVideoKey(params.PlaylistId, params.VideoId)).Err()
}

// GetPlaylistVideos returns the playlist entries in insertion order.
func (r repo) GetPlaylistVideos(ctx context.Context, playlistId string) ([]store.Video, error) {
	videoIds, err := r.rc.ZRange(ctx, r.getPlaylistVideosKey(playlistId), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	videos := make([]store.Video, 0, len(videoIds))
	for _, videoId := range videoIds {
		url, err := r.rc.HGet(ctx, r.getVideoKey(playlistId, videoId), "url").Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}

		videos = append(videos, store.Video{
			Id:           videoId,
			URL:          url,
			ThumbnailURL: ytvideoid.ThumbnailURL(videoId),
		})
	}

	return videos, nil
}
