package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePutGetImageRoundTrip(t *testing.T) {
	h := NewHeadless()
	ctx := context.Background()
	id, err := h.CreatePixmap(ctx, 2, 2, 24)
	require.NoError(t, err)

	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, h.PutImage(ctx, id, Rect{Width: 2, Height: 2}, 32, payload))

	got, err := h.GetImage(ctx, id, Rect{Width: 2, Height: 2}, 32)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestGetImageUnknownPixmapIsUnrecoverable(t *testing.T) {
	h := NewHeadless()
	_, err := h.GetImage(context.Background(), 999, Rect{}, 32)
	assert.Error(t, err)
}

func TestDestroyPixmapThenOperationsFail(t *testing.T) {
	h := NewHeadless()
	ctx := context.Background()
	id, err := h.CreatePixmap(ctx, 1, 1, 24)
	require.NoError(t, err)
	require.NoError(t, h.DestroyPixmap(ctx, id))

	_, err = h.GetImage(ctx, id, Rect{}, 32)
	assert.Error(t, err)
}
