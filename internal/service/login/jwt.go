package login

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserId   string `json:"user_id"`
	Provider string `json:"provider"`
	OauthId  string `json:"oauth_id"`
}

func (s *service) generateToken(userId, provider, oauthId string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userId,
		"provider": provider,
		"oauth_id": oauthId,
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.secret))
}

// ParseToken validates a session token handed back by a reconnecting
// client. Only the algorithm tokens are minted with is accepted.
func (s *service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(s.secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token")
	}

	userId, _ := claims["user_id"].(string)
	provider, _ := claims["provider"].(string)
	oauthId, _ := claims["oauth_id"].(string)

	return &Claims{UserId: userId, Provider: provider, OauthId: oauthId}, nil
}
