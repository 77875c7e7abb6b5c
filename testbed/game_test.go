package testbed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/core"
	lmath "github.com/spaghettifunk/lumen/engine/math"
)

func TestTestbedWritesEveryVariant(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	tb := NewTestGame(Options{Width: 48, Height: 32, FrameCount: 2, OutputDir: dir, LogLevel: core.ErrorLevel})

	e, err := engine.New(tb.Game)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run(context.Background()))

	stats := e.Renderer().Stats()
	assert.Equal(t, uint64(6), stats.FrameCount, "three variants per frame")
	require.NoError(t, e.Shutdown())

	for _, name := range []string{"color.bmp", "pick.bmp", "depth.bmp"} {
		f, err := os.Open(filepath.Join(dir, name))
		require.NoError(t, err, name)
		img, err := bmp.Decode(f)
		f.Close()
		require.NoError(t, err, name)
		assert.Equal(t, 48, img.Bounds().Dx(), name)
		assert.Equal(t, 32, img.Bounds().Dy(), name)
	}

	state := tb.State.(*gameState)
	assert.NotEqual(t, lmath.NoneID, state.hoveredObjectID, "the centre of the view hits the scene")
	assert.Nil(t, state.target)
}
