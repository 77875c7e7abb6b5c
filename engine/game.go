package engine

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
)

// Game is the set of callbacks the engine drives. Boot, OnResize and Shutdown
// are optional.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}

	FnBoot       Boot
	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type (
	Boot func() error
	// Initialize receives the context programs and geometry are created on
	// and the renderer frames are drawn with.
	Initialize func(ctx gpu.Context, r *renderer.Renderer) error
	Update     func(deltaTime float64) error
	Render     func(r *renderer.Renderer, deltaTime float64) error
	OnResize   func(width, height uint32) error
	Shutdown   func() error
)

func (g *Game) validate() error {
	switch {
	case g == nil || g.ApplicationConfig == nil:
		return fmt.Errorf("engine needs a game with an application config: %w", core.ErrInvalidArgument)
	case g.FnInitialize == nil, g.FnUpdate == nil, g.FnRender == nil:
		return fmt.Errorf("game %q is missing initialize, update or render: %w", g.ApplicationConfig.Name, core.ErrInvalidArgument)
	}
	return nil
}
