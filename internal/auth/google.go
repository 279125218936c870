// Package auth implements the per-provider oauth verifiers the login
// service delegates to.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/syncroom/server/internal/service/login"
	"github.com/syncroom/server/pkg/syncval"
)

var ErrVerificationFailed = errors.New("token verification failed")

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleVerifier checks a Google id token against the tokeninfo endpoint.
//
// https://developers.google.com/identity/sign-in/web/backend-auth
type GoogleVerifier struct {
	clientId   string
	httpClient *http.Client
	endpoint   string
}

func NewGoogleVerifier(clientId string) *GoogleVerifier {
	return &GoogleVerifier{
		clientId:   clientId,
		httpClient: http.DefaultClient,
		endpoint:   googleTokenInfoURL,
	}
}

type googleTokenInfo struct {
	Aud     string `json:"aud"`
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (v *GoogleVerifier) Verify(ctx context.Context, payload map[string]any) (*login.Identity, error) {
	token, _ := syncval.ExtractField(payload, "tokenId", "").(string)
	if token == "" {
		return nil, fmt.Errorf("%w: missing tokenId", ErrVerificationFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		v.endpoint+"?id_token="+url.QueryEscape(token), nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo returned status %d", ErrVerificationFailed, resp.StatusCode)
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	if info.Aud != v.clientId {
		return nil, fmt.Errorf("%w: token issued for another client", ErrVerificationFailed)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrVerificationFailed)
	}

	return &login.Identity{
		ExternalId: info.Sub,
		Name:       info.Name,
		Email:      info.Email,
		AvatarURL:  info.Picture,
	}, nil
}
