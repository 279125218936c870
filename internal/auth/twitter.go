package auth

import (
	"context"
	"fmt"

	"github.com/syncroom/server/internal/service/login"
	"github.com/syncroom/server/pkg/syncval"
)

// TwitterVerifier maps a twitter sign-in payload that was already verified
// upstream by the three-legged oauth dance; there is no token to re-check
// server side.
type TwitterVerifier struct{}

func NewTwitterVerifier() *TwitterVerifier {
	return &TwitterVerifier{}
}

func (v *TwitterVerifier) Verify(ctx context.Context, payload map[string]any) (*login.Identity, error) {
	if syncval.ExtractField(payload, "data.status", nil) != nil {
		return nil, fmt.Errorf("%w: client reported failure", ErrVerificationFailed)
	}

	userId, _ := syncval.ExtractField(payload, "data.user_id", "").(string)
	screenName, _ := syncval.ExtractField(payload, "data.screen_name", "").(string)
	if userId == "" || screenName == "" {
		return nil, fmt.Errorf("%w: missing user_id or screen_name", ErrVerificationFailed)
	}

	return &login.Identity{
		ExternalId: userId,
		Name:       screenName,
		Email:      userId,
	}, nil
}
