package redis

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/syncroom/server/internal/repository/store"
)

func (r repo) getUserKey(oauthType, oauthId string) string {
	return "user:oauth:" + oauthType + ":" + oauthId
}

// UpsertUser stores the verified identity, keeping the user id stable across
// repeated logins with the same oauth identity.
func (r repo) UpsertUser(ctx context.Context, params *store.UpsertUserParams) (string, error) {
	r.logger.DebugContext(ctx, "called", "oauth_type", params.OauthType, "oauth_id", params.OauthId)
	key := r.getUserKey(params.OauthType, params.OauthId)

	userId, err := r.rc.HGet(ctx, key, "id").Result()
	if errors.Is(err, redis.Nil) {
		userId = uuid.NewString()
	} else if err != nil {
		return "", err
	}

	user := store.User{
		Id:        userId,
		Name:      params.Name,
		Email:     params.Email,
		AvatarURL: params.AvatarURL,
		OauthId:   params.OauthId,
		OauthType: params.OauthType,
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, key, user)
	if err := r.executePipe(ctx, pipe); err != nil {
		return "", err
	}

	return userId, nil
}

func (r repo) GetUserByOauth(ctx context.Context, oauthType, oauthId string) (store.User, error) {
	var user store.User
	if err := r.rc.HGetAll(ctx, r.getUserKey(oauthType, oauthId)).Scan(&user); err != nil {
		return store.User{}, err
	}

	if user.Id == "" {
		return store.User{}, store.ErrUserNotFound
	}

	return user, nil
}
