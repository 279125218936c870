package store

type InsertVideoParams struct {
	VideoId    string
	URL        string
	PlaylistId string
}

type DeleteVideoParams struct {
	VideoId    string
	PlaylistId string
}

type UpsertUserParams struct {
	OauthId   string
	OauthType string
	Name      string
	Email     string
	AvatarURL string
}
