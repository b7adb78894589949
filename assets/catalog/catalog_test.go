package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexballas/xmediagrid/assets"
)

func sample() []assets.Asset {
	return []assets.Asset{
		{ID: "file:///media/b.mp4", Kind: assets.KindVideo, Name: "b.mp4", Duration: 90 * time.Second},
		{ID: "file:///media/a.png", Kind: assets.KindImage, Name: "a.png"},
		{ID: "file:///media/c.mkv", Kind: assets.KindVideo, Name: "c.mkv", Duration: 1500 * time.Millisecond},
	}
}

func TestOpen_Memory(t *testing.T) {
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()

	var name string
	err = c.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='assets'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "assets", name)
}

func TestReplace_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Replace(ctx, "file:///media", sample()))

	got, err := c.Assets(ctx, "file:///media")
	require.NoError(t, err)
	assert.Equal(t, sample(), got, "order and fields must survive a round trip")

	// Replacing drops what is no longer there.
	require.NoError(t, c.Replace(ctx, "file:///media", sample()[:1]))
	got, err = c.Assets(ctx, "file:///media")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	lib, err := c.Library(ctx, "file:///media")
	require.NoError(t, err)
	assert.Equal(t, 1, lib.Count)
	assert.False(t, lib.ScannedAt.IsZero())
}

func TestReplace_Empty(t *testing.T) {
	ctx := context.Background()
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Replace(ctx, "file:///empty", nil))
	got, err := c.Assets(ctx, "file:///empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAssets_NotFound(t *testing.T) {
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Assets(context.Background(), "file:///nowhere")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, c.Forget(context.Background(), "file:///nowhere"), ErrNotFound)
}

func TestLibraries_AndForget(t *testing.T) {
	ctx := context.Background()
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Replace(ctx, "file:///one", sample()))
	require.NoError(t, c.Replace(ctx, "file:///two", sample()[:2]))

	libs, err := c.Libraries(ctx)
	require.NoError(t, err)
	require.Len(t, libs, 2)

	require.NoError(t, c.Forget(ctx, "file:///one"))
	libs, err = c.Libraries(ctx)
	require.NoError(t, err)
	require.Len(t, libs, 1)
	assert.Equal(t, "file:///two", libs[0].URI)
	assert.Equal(t, 2, libs[0].Count)
}

func TestSource(t *testing.T) {
	ctx := context.Background()
	c, err := Open(":memory:")
	require.NoError(t, err)
	defer c.Close()

	src := NewSource(c, "file:///media")
	assert.Equal(t, assets.StatusNotDetermined, src.AuthorizationStatus())
	_, err = assets.FetchSnapshot(ctx, src)
	require.ErrorIs(t, err, assets.ErrNotAuthorized)

	require.NoError(t, c.Replace(ctx, "file:///media", sample()))
	status, err := src.RequestAuthorization(ctx)
	require.NoError(t, err)
	assert.Equal(t, assets.StatusAuthorized, status)

	snap, err := assets.FetchSnapshot(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Len())
	id, ok := snap.ID(1)
	require.True(t, ok)
	assert.Equal(t, assets.ID("file:///media/a.png"), id)
}
