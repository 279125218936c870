package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/syncroom/server/internal/repository/store"
	"github.com/syncroom/server/pkg/ytvideoid"
)

type EnqueueVideoParams struct {
	ConnId string
	RoomId string
	URL    string
}

// EnqueueVideo persists a playlist entry and then rebroadcasts the full
// authoritative playlist to the room. The broadcast only happens after the
// store call succeeds, so a store failure never leaves members with a list
// they cannot trust.
func (s *service) EnqueueVideo(ctx context.Context, params *EnqueueVideoParams) error {
	videoId, ok := ytvideoid.Extract(params.URL)
	if !ok {
		s.metrics.EventDropped("bad_video_url")
		s.logger.DebugContext(ctx, "video url rejected", "room_id", params.RoomId, "url", params.URL)
		return nil
	}

	playlist, err := s.store.GetPlaylist(ctx, params.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get playlist: %w", err)
	}

	if s.cfg.PlaylistLimit > 0 {
		videos, err := s.store.GetPlaylistVideos(ctx, playlist.Id)
		if err != nil {
			return fmt.Errorf("failed to get playlist videos: %w", err)
		}
		if len(videos) >= s.cfg.PlaylistLimit {
			return ErrPlaylistLimitReached
		}
	}

	if err := s.store.InsertVideo(ctx, &store.InsertVideoParams{
		VideoId:    videoId,
		URL:        params.URL,
		PlaylistId: playlist.Id,
	}); err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}

	s.logger.InfoContext(ctx, "video enqueued", "room_id", params.RoomId, "video_id", videoId)

	return s.broadcastPlaylist(ctx, params.RoomId, playlist.Id)
}

type DequeueVideoParams struct {
	ConnId string
	RoomId string
	URL    string
}

// DequeueVideo removes a playlist entry and rebroadcasts the full playlist.
// Removing a video that is not queued still rebroadcasts, so every member
// converges on the authoritative list.
func (s *service) DequeueVideo(ctx context.Context, params *DequeueVideoParams) error {
	videoId, ok := ytvideoid.Extract(params.URL)
	if !ok {
		s.metrics.EventDropped("bad_video_url")
		s.logger.DebugContext(ctx, "video url rejected", "room_id", params.RoomId, "url", params.URL)
		return nil
	}

	playlist, err := s.store.GetPlaylist(ctx, params.RoomId)
	if err != nil {
		return fmt.Errorf("failed to get playlist: %w", err)
	}

	if err := s.store.DeleteVideo(ctx, &store.DeleteVideoParams{
		VideoId:    videoId,
		PlaylistId: playlist.Id,
	}); err != nil && !errors.Is(err, store.ErrVideoNotFound) {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	s.logger.InfoContext(ctx, "video dequeued", "room_id", params.RoomId, "video_id", videoId)

	return s.broadcastPlaylist(ctx, params.RoomId, playlist.Id)
}

func (s *service) broadcastPlaylist(ctx context.Context, roomId, playlistId string) error {
	videos, err := s.store.GetPlaylistVideos(ctx, playlistId)
	if err != nil {
		return fmt.Errorf("failed to get playlist videos: %w", err)
	}

	s.mu.RLock()
	room := s.rooms[roomId]
	s.mu.RUnlock()
	if room == nil {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	s.broadcastLocked(ctx, room, EventPlaylist, map[string]any{
		"videos": videos,
	}, nil)

	return nil
}
