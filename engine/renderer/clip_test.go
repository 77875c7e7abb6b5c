package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	lmath "github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func clipObjects(n int) []metadata.ClipObject {
	out := make([]metadata.ClipObject, n)
	for i := range out {
		out[i] = metadata.ClipObject{
			Type:     metadata.ClipSphere,
			Position: mgl32.Vec3{float32(i), 0, 0},
			Scale:    mgl32.Vec3{2, 2, 2},
		}
	}
	return out
}

func TestClipStateNeutralSlots(t *testing.T) {
	c := NewClipState()
	assert.Zero(t, c.Count)
	for i := 0; i < MaxClipObjects; i++ {
		assert.Equal(t, lmath.IdentityQuat(), c.Rotations[i])
		assert.Equal(t, mgl32.Vec3{1, 1, 1}, c.Scales[i])
	}
}

func TestClipStateTruncatesToMax(t *testing.T) {
	c := NewClipState()
	assert.True(t, c.Update(metadata.ClipProps{Objects: clipObjects(MaxClipObjects + 2)}))
	assert.Equal(t, MaxClipObjects, c.Count)
	assert.Equal(t, mgl32.Vec3{4, 0, 0}, c.Positions[MaxClipObjects-1])
	assert.Equal(t, int32(metadata.ClipSphere), c.Types[0])
}

func TestClipStateUpdateReportsChanges(t *testing.T) {
	c := NewClipState()
	props := metadata.ClipProps{Objects: clipObjects(2)}
	assert.True(t, c.Update(props))
	assert.False(t, c.Update(props), "same objects")

	props.Variant = metadata.ClipVariantPixel
	assert.True(t, c.Update(props), "variant changed")

	props.Objects = clipObjects(1)
	assert.True(t, c.Update(props))
	assert.Equal(t, 1, c.Count)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, c.Scales[1], "dropped slots return to neutral")
}

func TestClipStateFirstEmptyUpdateCounts(t *testing.T) {
	c := NewClipState()
	assert.True(t, c.Update(metadata.ClipProps{}))
	assert.False(t, c.Update(metadata.ClipProps{}))
}

func TestClipStateRotation(t *testing.T) {
	c := NewClipState()
	c.Update(metadata.ClipProps{Objects: []metadata.ClipObject{{
		Type:  metadata.ClipPlane,
		Axis:  mgl32.Vec3{1, 0, 0},
		Angle: 180,
		Scale: mgl32.Vec3{1, 1, 1},
	}}})
	q := lmath.UnpackQuat(c.Rotations[0])
	v := q.Rotate(mgl32.Vec3{0, 0, 1})
	assert.InDeltaSlice(t, []float32{0, 0, -1}, v[:], 1e-6)
}
