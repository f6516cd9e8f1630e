package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndGet(t *testing.T) {
	g := NewGraph()
	_, err := g.Insert(1, KindWindow, 1, "payload")
	require.NoError(t, err)

	rec, err := g.Get(1, KindWindow)
	require.NoError(t, err)
	assert.Equal(t, "payload", rec.Payload)
}

func TestGetKindMismatch(t *testing.T) {
	g := NewGraph()
	_, _ = g.Insert(1, KindWindow, 1, nil)
	_, err := g.Get(1, KindPixmap)
	var mismatch *ErrKindMismatch
	assert.ErrorAs(t, err, &mismatch)
}

func TestInsertDuplicateID(t *testing.T) {
	g := NewGraph()
	_, err := g.Insert(1, KindWindow, 1, nil)
	require.NoError(t, err)
	_, err = g.Insert(1, KindPixmap, 2, nil)
	var inUse *ErrIDInUse
	assert.ErrorAs(t, err, &inUse)
}

func TestRemoveDetachesFromOwner(t *testing.T) {
	g := NewGraph()
	_, _ = g.Insert(1, KindWindow, 1, nil)
	_, _ = g.Insert(2, KindWindow, 1, nil)
	assert.ElementsMatch(t, []XID{1, 2}, g.IterOwnedBy(1))

	_, err := g.Remove(1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []XID{2}, g.IterOwnedBy(1))
	assert.False(t, g.Exists(1))
}

func TestClientRangeContains(t *testing.T) {
	r := ClientRange{Base: 0x00800000, Mask: 0x001FFFFF}
	assert.True(t, r.Contains(0x00800001))
	assert.False(t, r.Contains(0x00000001))
}

func TestCleanupOrderIsWindowFirstColormapLast(t *testing.T) {
	order := CleanupOrder()
	require.Len(t, order, 6)
	assert.Equal(t, KindWindow, order[0])
	assert.Equal(t, KindColormap, order[len(order)-1])
}
