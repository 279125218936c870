package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_token") != "good-token" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"aud":     "client-1",
			"sub":     "sub-1",
			"name":    "Alice",
			"email":   "alice@example.com",
			"picture": "https://example.com/a.png",
		})
	}))
	t.Cleanup(srv.Close)

	v := NewGoogleVerifier("client-1")
	v.endpoint = srv.URL

	identity, err := v.Verify(context.Background(), map[string]any{"tokenId": "good-token"})
	require.NoError(t, err)
	assert.Equal(t, "sub-1", identity.ExternalId)
	assert.Equal(t, "Alice", identity.Name)
	assert.Equal(t, "alice@example.com", identity.Email)

	_, err = v.Verify(context.Background(), map[string]any{"tokenId": "bad-token"})
	assert.ErrorIs(t, err, ErrVerificationFailed)

	_, err = v.Verify(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestGoogleVerifyWrongAudience(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"aud": "someone-else",
			"sub": "sub-1",
		})
	}))
	t.Cleanup(srv.Close)

	v := NewGoogleVerifier("client-1")
	v.endpoint = srv.URL

	_, err := v.Verify(context.Background(), map[string]any{"tokenId": "good-token"})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestFacebookVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "fb-1",
			"name":  "Bob",
			"email": "bob@example.com",
		})
	}))
	t.Cleanup(srv.Close)

	v := NewFacebookVerifier()
	v.endpoint = srv.URL

	identity, err := v.Verify(context.Background(), map[string]any{
		"response": map[string]any{"id": "fb-1", "accessToken": "good-token"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fb-1", identity.ExternalId)
	assert.Equal(t, "Bob", identity.Name)

	// token owned by a different user than the one claimed
	_, err = v.Verify(context.Background(), map[string]any{
		"response": map[string]any{"id": "fb-2", "accessToken": "good-token"},
	})
	assert.ErrorIs(t, err, ErrVerificationFailed)

	// a status field means the client-side flow already failed
	_, err = v.Verify(context.Background(), map[string]any{
		"response": map[string]any{"status": "not_authorized"},
	})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestFacebookVerifyEmailFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "fb-1", "name": "Bob"})
	}))
	t.Cleanup(srv.Close)

	v := NewFacebookVerifier()
	v.endpoint = srv.URL

	identity, err := v.Verify(context.Background(), map[string]any{
		"response": map[string]any{"id": "fb-1", "accessToken": "good-token"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fb-1", identity.Email, "missing email falls back to the user id")
}

func TestTwitterVerify(t *testing.T) {
	v := NewTwitterVerifier()

	identity, err := v.Verify(context.Background(), map[string]any{
		"data": map[string]any{"user_id": "tw-1", "screen_name": "carol"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tw-1", identity.ExternalId)
	assert.Equal(t, "carol", identity.Name)
	assert.Equal(t, "tw-1", identity.Email)

	_, err = v.Verify(context.Background(), map[string]any{
		"data": map[string]any{"status": "denied", "user_id": "tw-1", "screen_name": "carol"},
	})
	assert.ErrorIs(t, err, ErrVerificationFailed)

	_, err = v.Verify(context.Background(), map[string]any{"data": map[string]any{}})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}
