package atom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredefinedAtomsPreseeded(t *testing.T) {
	tbl := NewTable()
	name, err := tbl.NameOf(31)
	require.NoError(t, err)
	assert.Equal(t, "STRING", name)

	name, err = tbl.NameOf(39)
	require.NoError(t, err)
	assert.Equal(t, "WM_NAME", name)

	name, err = tbl.NameOf(67)
	require.NoError(t, err)
	assert.Equal(t, "WM_CLASS", name)
}

func TestInternIsIdempotent(t *testing.T) {
	tbl := NewTable()
	id1, err := tbl.Intern("_NET_WM_NAME", false)
	require.NoError(t, err)
	id2, err := tbl.Intern("_NET_WM_NAME", false)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestInternOnlyIfExistsMissReturnsNone(t *testing.T) {
	tbl := NewTable()
	id, err := tbl.Intern("_NEVER_SEEN_BEFORE", true)
	require.NoError(t, err)
	assert.Equal(t, None, id)
	assert.False(t, tbl.Exists(id))
}

func TestInternOnlyIfExistsHitReturnsExistingID(t *testing.T) {
	tbl := NewTable()
	first, err := tbl.Intern("_NET_WM_STATE", false)
	require.NoError(t, err)

	got, err := tbl.Intern("_NET_WM_STATE", true)
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestInternRejectsInvalidLength(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.Intern("", false)
	var invalid *ErrInvalidName
	assert.ErrorAs(t, err, &invalid)
}

func TestNameOfUnknownAtom(t *testing.T) {
	tbl := NewTable()
	_, err := tbl.NameOf(9999)
	var unknown *ErrUnknownAtom
	assert.ErrorAs(t, err, &unknown)
}

func TestNewAtomsAllocateAfterPredefinedRange(t *testing.T) {
	tbl := NewTable()
	id, err := tbl.Intern("_SOME_CUSTOM_ATOM", false)
	require.NoError(t, err)
	assert.Greater(t, uint32(id), uint32(len(predefinedNames)))
}
