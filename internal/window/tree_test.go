package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxserver/rxserver/internal/atom"
	"github.com/rxserver/rxserver/internal/resource"
)

func newTestTree(t *testing.T) (*Tree, resource.XID) {
	t.Helper()
	g := resource.NewGraph()
	a := atom.NewTable()
	tr := NewTree(g, a)
	_, err := tr.CreateRoot(1, 1, 24, 0x21, Geometry{Width: 1024, Height: 768})
	require.NoError(t, err)
	return tr, 1
}

func TestCreateWindowAppendsAtTopOfParentStack(t *testing.T) {
	tr, root := newTestTree(t)
	_, err := tr.CreateWindow(2, root, 1, ClassInputOutput, 24, 0x21, Geometry{Width: 100, Height: 100})
	require.NoError(t, err)
	_, err = tr.CreateWindow(3, root, 1, ClassInputOutput, 24, 0x21, Geometry{Width: 100, Height: 100})
	require.NoError(t, err)

	rootWin, err := tr.window(root)
	require.NoError(t, err)
	assert.Equal(t, []resource.XID{3, 2}, rootWin.Children)
}

func TestCreateWindowRejectsZeroDimensions(t *testing.T) {
	tr, root := newTestTree(t)
	_, err := tr.CreateWindow(2, root, 1, ClassInputOutput, 24, 0x21, Geometry{Width: 0, Height: 100})
	assert.Error(t, err)
}

func TestCreateWindowRejectsExcessiveBorderWidth(t *testing.T) {
	tr, root := newTestTree(t)
	_, err := tr.CreateWindow(2, root, 1, ClassInputOutput, 24, 0x21, Geometry{Width: 10, Height: 10, BorderWidth: 1001})
	assert.Error(t, err)
}

func TestCreateWindowRejectsMissingParent(t *testing.T) {
	tr, _ := newTestTree(t)
	_, err := tr.CreateWindow(2, 999, 1, ClassInputOutput, 24, 0x21, Geometry{Width: 10, Height: 10})
	assert.Error(t, err)
}

func TestDestroyWindowCascadesInnermostFirst(t *testing.T) {
	tr, root := newTestTree(t)
	require.NoError(t, mustCreate(tr, 2, root))
	require.NoError(t, mustCreate(tr, 3, 2))
	require.NoError(t, mustCreate(tr, 4, 2))

	order, err := tr.DestroyWindow(2)
	require.NoError(t, err)

	// Both children must precede the parent; relative order between
	// siblings 3 and 4 is unspecified but 2 must be last.
	assert.Equal(t, resource.XID(2), order[len(order)-1])
	assert.Contains(t, order, resource.XID(3))
	assert.Contains(t, order, resource.XID(4))

	assert.False(t, tr.graphExists(2))
	assert.False(t, tr.graphExists(3))
	assert.False(t, tr.graphExists(4))
}

func TestDestroyWindowRejectsRoot(t *testing.T) {
	tr, root := newTestTree(t)
	_, err := tr.DestroyWindow(root)
	assert.Error(t, err)
}

func TestMapWindowExposesWhenAncestorsMapped(t *testing.T) {
	tr, root := newTestTree(t)
	require.NoError(t, mustCreate(tr, 2, root))

	_, exposed, err := tr.MapWindow(2)
	require.NoError(t, err)
	require.Len(t, exposed, 1)
	assert.Equal(t, resource.XID(2), exposed[0].Window)
}

func TestUnmapWindowRevealsOverlappingMappedSibling(t *testing.T) {
	tr, root := newTestTree(t)
	require.NoError(t, tr.createAt(2, root, Geometry{X: 0, Y: 0, Width: 50, Height: 50}))
	require.NoError(t, tr.createAt(3, root, Geometry{X: 0, Y: 0, Width: 50, Height: 50}))
	_, _, err := tr.MapWindow(2)
	require.NoError(t, err)
	_, _, err = tr.MapWindow(3)
	require.NoError(t, err)

	// 3 was created after 2, so 3 is on top of 2; unmapping 3 reveals 2.
	_, revealed, err := tr.UnmapWindow(3)
	require.NoError(t, err)
	require.Len(t, revealed, 1)
	assert.Equal(t, resource.XID(2), revealed[0].Window)
}

func TestConfigureWindowAppliesGeometry(t *testing.T) {
	tr, root := newTestTree(t)
	require.NoError(t, mustCreate(tr, 2, root))

	w, err := tr.ConfigureWindow(2, ConfigureRequest{Mask: ConfigX | ConfigY, X: 5, Y: 7})
	require.NoError(t, err)
	assert.Equal(t, int16(5), w.Geometry.X)
	assert.Equal(t, int16(7), w.Geometry.Y)
}

func TestConfigureWindowRejectsZeroWidth(t *testing.T) {
	tr, root := newTestTree(t)
	require.NoError(t, mustCreate(tr, 2, root))
	_, err := tr.ConfigureWindow(2, ConfigureRequest{Mask: ConfigWidth, Width: 0})
	assert.Error(t, err)
}

func TestConfigureWindowStackAboveMovesJustAboveSibling(t *testing.T) {
	tr, root := newTestTree(t)
	require.NoError(t, mustCreate(tr, 2, root))
	require.NoError(t, mustCreate(tr, 3, root))
	require.NoError(t, mustCreate(tr, 4, root))
	// stacking order is now [4, 3, 2] (most-recently-created on top)

	_, err := tr.ConfigureWindow(2, ConfigureRequest{
		Mask: ConfigStackMode | ConfigSibling, StackMode: StackAbove, Sibling: 3,
	})
	require.NoError(t, err)

	rootWin, err := tr.window(root)
	require.NoError(t, err)
	assert.Equal(t, []resource.XID{4, 2, 3}, rootWin.Children)
}

func TestConfigureWindowRejectsNonSibling(t *testing.T) {
	tr, root := newTestTree(t)
	require.NoError(t, mustCreate(tr, 2, root))
	require.NoError(t, mustCreate(tr, 3, root))

	_, err := tr.ConfigureWindow(2, ConfigureRequest{
		Mask: ConfigStackMode | ConfigSibling, StackMode: StackAbove, Sibling: 999,
	})
	assert.Error(t, err)
}

func TestChangePropertyThenGetProperty(t *testing.T) {
	tr, root := newTestTree(t)
	require.NoError(t, mustCreate(tr, 2, root))

	nameID, err := tr.atoms.Intern("WM_NAME", false)
	require.NoError(t, err)
	typeID, err := tr.atoms.Intern("STRING", false)
	require.NoError(t, err)

	err = tr.ChangeProperty(2, nameID, typeID, 8, PropReplace, []byte("hello"))
	require.NoError(t, err)

	val, err := tr.GetProperty(2, nameID)
	require.NoError(t, err)
	require.NotNil(t, val)
	assert.Equal(t, "hello", string(val.Data))
}

func TestChangePropertyAppendConcatenates(t *testing.T) {
	tr, root := newTestTree(t)
	require.NoError(t, mustCreate(tr, 2, root))
	nameID, _ := tr.atoms.Intern("WM_NAME", false)
	typeID, _ := tr.atoms.Intern("STRING", false)

	require.NoError(t, tr.ChangeProperty(2, nameID, typeID, 8, PropReplace, []byte("foo")))
	require.NoError(t, tr.ChangeProperty(2, nameID, typeID, 8, PropAppend, []byte("bar")))

	val, err := tr.GetProperty(2, nameID)
	require.NoError(t, err)
	assert.Equal(t, "foobar", string(val.Data))
}

func TestChangePropertyRejectsUnknownFormat(t *testing.T) {
	tr, root := newTestTree(t)
	require.NoError(t, mustCreate(tr, 2, root))
	nameID, _ := tr.atoms.Intern("WM_NAME", false)
	typeID, _ := tr.atoms.Intern("STRING", false)

	err := tr.ChangeProperty(2, nameID, typeID, 12, PropReplace, []byte("x"))
	assert.Error(t, err)
}

func TestGetGeometryReturnsWindowRect(t *testing.T) {
	tr, root := newTestTree(t)
	require.NoError(t, tr.createAt(2, root, Geometry{X: 1, Y: 2, Width: 30, Height: 40, BorderWidth: 1}))

	reply, err := tr.GetGeometry(2, root)
	require.NoError(t, err)
	assert.Equal(t, root, reply.Root)
	assert.Equal(t, uint16(30), reply.Width)
}

func mustCreate(tr *Tree, id, parent resource.XID) error {
	_, err := tr.CreateWindow(id, parent, 1, ClassInputOutput, 24, 0x21, Geometry{Width: 10, Height: 10})
	return err
}

func (t *Tree) createAt(id, parent resource.XID, geom Geometry) error {
	_, err := t.CreateWindow(id, parent, 1, ClassInputOutput, 24, 0x21, geom)
	return err
}

func (t *Tree) graphExists(id resource.XID) bool {
	return t.graph.Exists(id)
}
