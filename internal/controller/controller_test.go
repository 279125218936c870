package controller

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*Output
}

func (f *fakeSender) Send(conn *websocket.Conn, v any) error {
	out, ok := v.(*Output)
	if !ok {
		return nil
	}
	f.sent = append(f.sent, out)

	return nil
}

func TestSendErrorKeepsCauseOutOfThePayload(t *testing.T) {
	sender := &fakeSender{}
	c := &controller{sender: sender, logger: slog.Default()}

	c.sendError(context.Background(),
		&websocket.Conn{},
		errors.New("failed to enqueue video: dial tcp 127.0.0.1:6379: connect: connection refused"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "error", sender.sent[0].Event)
	assert.Equal(t, map[string]any{"status": "fail"}, sender.sent[0].Payload)
}
