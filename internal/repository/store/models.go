package store

type Playlist struct {
	Id string `json:"id"`
}

type Video struct {
	Id           string `json:"videoId"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type User struct {
	Id        string `redis:"id"`
	Name      string `redis:"name"`
	Email     string `redis:"email"`
	AvatarURL string `redis:"avatar_url"`
	OauthId   string `redis:"oauth_id"`
	OauthType string `redis:"oauth_type"`
}
