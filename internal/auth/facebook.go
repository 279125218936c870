package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/syncroom/server/internal/service/login"
	"github.com/syncroom/server/pkg/syncval"
)

const facebookMeURL = "https://graph.facebook.com/me?fields=id,name,email,picture"

// FacebookVerifier checks a Facebook access token by asking the Graph API
// who it belongs to and comparing against the id the client claimed.
type FacebookVerifier struct {
	endpoint string
}

func NewFacebookVerifier() *FacebookVerifier {
	return &FacebookVerifier{endpoint: facebookMeURL}
}

type facebookMe struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

func (v *FacebookVerifier) Verify(ctx context.Context, payload map[string]any) (*login.Identity, error) {
	// a status field means the client-side flow already failed
	if syncval.ExtractField(payload, "response.status", nil) != nil {
		return nil, fmt.Errorf("%w: client reported failure", ErrVerificationFailed)
	}

	claimedId, _ := syncval.ExtractField(payload, "response.id", "").(string)
	accessToken, _ := syncval.ExtractField(payload, "response.accessToken", "").(string)
	if claimedId == "" || accessToken == "" {
		return nil, fmt.Errorf("%w: missing id or access token", ErrVerificationFailed)
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: graph api returned status %d", ErrVerificationFailed, resp.StatusCode)
	}

	var me facebookMe
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	if me.Id != claimedId {
		return nil, fmt.Errorf("%w: token belongs to another user", ErrVerificationFailed)
	}

	email := me.Email
	if email == "" {
		email = me.Id
	}

	return &login.Identity{
		ExternalId: me.Id,
		Name:       me.Name,
		Email:      email,
		AvatarURL:  me.Picture.Data.URL,
	}, nil
}
