package metadata

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/lumen/engine/core"
)

/**
 * @brief An ordered collection of drawables plus the model transform applied
 * to all of them. Drawables live in an index arena; iteration follows slot order.
 */
type Scene struct {
	Model     mgl32.Mat4
	drawables *core.Arena[Drawable]
}

func NewScene() *Scene {
	return &Scene{
		Model:     mgl32.Ident4(),
		drawables: core.NewArena[Drawable](64),
	}
}

// Add stores d and returns its slot, which is also written to d.ID.
func (s *Scene) Add(d Drawable) uint32 {
	id := s.drawables.Acquire(d)
	s.drawables.Get(id).ID = id
	return id
}

func (s *Scene) Remove(id uint32) error {
	return s.drawables.Release(id)
}

// Get returns the drawable in slot id, or nil.
func (s *Scene) Get(id uint32) *Drawable {
	return s.drawables.Get(id)
}

func (s *Scene) Len() int {
	return s.drawables.Len()
}

// Each visits drawables in slot order.
func (s *Scene) Each(fn func(d *Drawable)) {
	s.drawables.Each(func(_ uint32, d *Drawable) {
		fn(d)
	})
}
