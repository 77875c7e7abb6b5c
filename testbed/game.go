package testbed

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/bmp"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/core"
	lmath "github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
	"github.com/spaghettifunk/lumen/engine/systems"
)

// Degrees per second the camera orbits the scene.
const orbitSpeed float32 = 15

// Application event fired when the object under the centre of the target
// changes.
/* Context usage:
 * u32 id = data.data.u32[0];
 */
const EVENT_CODE_OBJECT_HOVERED core.SystemEventCode = 0x100

type TestGame struct {
	*engine.Game
}

type gameState struct {
	systems     *systems.SystemManager
	WorldCamera *components.Camera

	width  uint32
	height uint32

	renderer *renderer.Renderer
	ctx      gpu.Context
	programs [metadata.RenderVariantCount]gpu.Program
	scene    *metadata.Scene
	target   *metadata.RenderTarget

	outputDir       string
	frame           uint64
	hoveredObjectID uint32
}

// Options configures the testbed from the command line.
type Options struct {
	Width      uint32
	Height     uint32
	PropsPath  string
	WatchProps bool
	FrameCount uint64
	// OutputDir receives color, pick and depth bitmaps; empty disables them.
	OutputDir string
	LogLevel  core.Level
}

func NewTestGame(opts Options) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				StartWidth:  opts.Width,
				StartHeight: opts.Height,
				Name:        "Lumen Testbed",
				LogLevel:    opts.LogLevel,
				PropsPath:   opts.PropsPath,
				WatchProps:  opts.WatchProps,
				FrameCount:  opts.FrameCount,
			},
			State: &gameState{
				outputDir:       opts.OutputDir,
				hoveredObjectID: lmath.NoneID,
			},
		},
	}

	tg.FnBoot = tg.Boot
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Boot() error {
	core.LogInfo("booting %s...", g.ApplicationConfig.Name)

	state := g.State.(*gameState)
	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		MaxCameraCount: 8,
		JobWorkers:     2,
		JobQueueSize:   int(metadata.RenderVariantCount),
	})
	if err != nil {
		return err
	}
	state.systems = sm

	if state.outputDir != "" {
		if err := os.MkdirAll(state.outputDir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func (g *TestGame) Initialize(ctx gpu.Context, r *renderer.Renderer) error {
	core.LogDebug("TestGame Initialize fn....")

	state := g.State.(*gameState)
	state.ctx = ctx
	state.renderer = r

	core.EventRegister(EVENT_CODE_OBJECT_HOVERED, g, g.onEvent)
	core.EventRegister(core.EVENT_CODE_PROPS_RELOADED, g, g.onEvent)

	state.WorldCamera = state.systems.Cameras().GetDefault()
	state.WorldCamera.SetPosition(mgl32.Vec3{6, 4, 9})
	state.WorldCamera.SetClipPlanes(0.5, 40)

	state.programs[metadata.VariantColor] = ctx.CreateProgram(gpu.ProgramMeshColor)
	state.programs[metadata.VariantPick] = ctx.CreateProgram(gpu.ProgramMeshPick)
	state.programs[metadata.VariantDepth] = ctx.CreateProgram(gpu.ProgramMeshDepth)
	for _, p := range state.programs {
		if err := p.Err(); err != nil {
			return fmt.Errorf("program %s: %w", p.Name(), err)
		}
	}

	state.scene = metadata.NewScene()
	g.buildScene(state)
	core.LogInfo("scene ready with %d drawables", state.scene.Len())
	return nil
}

func (g *TestGame) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	switch code {
	case EVENT_CODE_OBJECT_HOVERED:
		if id := data.Data.U32[0]; id == lmath.NoneID {
			core.LogInfo("Hovered: none")
		} else {
			core.LogInfo("Hovered: %d", id)
		}
		return true
	case core.EVENT_CODE_PROPS_RELOADED:
		core.LogInfo("renderer properties reloaded from %s", data.Data.C[0])
		return false
	}
	return false
}

func (g *TestGame) buildScene(state *gameState) {
	pickID := uint32(1)
	add := func(d metadata.Drawable, geom gpu.Geometry, rgb mgl32.Vec3, alpha float32, marker int32) uint32 {
		d.PickID = pickID
		pickID++
		d.Visible = true
		d.Programs = state.programs
		d.Geometry = geom
		// Program uniforms persist across drawables, so every drawable sets
		// all of its values.
		d.Values = []metadata.Binding{
			{Name: "uColor", Value: rgb},
			{Name: "uAlpha", Value: alpha},
			{Name: "uMarker", Value: marker},
		}
		return state.scene.Add(d)
	}

	// Floor.
	add(metadata.Drawable{Pickable: true, Opaque: true, WriteDepth: true},
		software.NewBox(mgl32.Vec3{-5, -1.2, -5}, mgl32.Vec3{5, -1, 5}),
		mgl32.Vec3{0.6, 0.6, 0.6}, 1, 0)

	// A row of instanced pillars.
	pillars := software.NewBox(mgl32.Vec3{-0.25, -1, -0.25}, mgl32.Vec3{0.25, 1.5, 0.25})
	for i := 0; i < 4; i++ {
		pillars.Instances = append(pillars.Instances, mgl32.Translate3D(float32(i)*2-3, 0, -3.5))
	}
	add(metadata.Drawable{Pickable: true, Opaque: true, WriteDepth: true},
		pillars, mgl32.Vec3{0.8, 0.3, 0.2}, 1, 0)

	// Selected opaque box.
	add(metadata.Drawable{Pickable: true, Opaque: true, WriteDepth: true},
		software.NewBox(mgl32.Vec3{-2, -1, -1}, mgl32.Vec3{-1, 0, 0}),
		mgl32.Vec3{0.9, 0.8, 0.2}, 1, 2)

	// Glass box; blended and depth writing.
	add(metadata.Drawable{Pickable: true, WriteDepth: true},
		software.NewBox(mgl32.Vec3{-0.5, -1, -0.5}, mgl32.Vec3{1.5, 1, 1.5}),
		mgl32.Vec3{0.2, 0.4, 1}, 0.4, 0)

	// Double sided highlighted pane; blended and depth writing.
	add(metadata.Drawable{Pickable: true, WriteDepth: true, DoubleSided: true},
		software.NewQuad(mgl32.Vec2{-3, -1}, mgl32.Vec2{3, 2}, 2.5),
		mgl32.Vec3{0.3, 0.9, 0.4}, 0.3, 1)

	// Glow; additive, not pickable and absent from depth.
	add(metadata.Drawable{ColorOnly: true},
		software.NewQuad(mgl32.Vec2{0, 0}, mgl32.Vec2{2.5, 2.5}, -1.5),
		mgl32.Vec3{0.2, 0.1, 0.4}, 0.6, 0)

	// Hidden box; never drawn.
	hidden := add(metadata.Drawable{Pickable: true, Opaque: true, WriteDepth: true},
		software.NewBox(mgl32.Vec3{3, -1, 3}, mgl32.Vec3{4, 0, 4}),
		mgl32.Vec3{1, 0, 1}, 1, 0)
	state.scene.Get(hidden).Visible = false
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.WorldCamera.Orbit(orbitSpeed * float32(deltaTime))
	return nil
}

func (g *TestGame) Render(r *renderer.Renderer, deltaTime float64) error {
	state := g.State.(*gameState)
	if state.target == nil {
		return nil
	}

	passes := []renderer.RenderOptions{
		{Target: state.target, Variant: metadata.VariantColor, Clear: true, TransparentSubPass: true},
		{Target: state.target, Variant: metadata.VariantPick, Clear: true},
		{Target: state.target, Variant: metadata.VariantDepth, Clear: true},
	}
	save := state.outputDir != "" && g.lastFrame(state.frame)
	for _, opts := range passes {
		if err := r.Render(state.scene, state.WorldCamera, opts); err != nil {
			return err
		}
		if opts.Variant == metadata.VariantPick {
			if err := g.trackHover(state); err != nil {
				return err
			}
		}
		if save {
			if err := g.writeBitmap(state, opts.Variant.String()+".bmp"); err != nil {
				return err
			}
		}
	}

	stats := r.Stats()
	core.LogDebug("frame %d: %d draws, %d instances, %d state changes (%d skipped), %.2fms",
		stats.FrameCount, stats.DrawCount, stats.InstanceCount,
		stats.StateChangeCount, stats.StateSkipCount, stats.FrameTimeMS)
	state.frame++
	return nil
}

func (g *TestGame) lastFrame(frame uint64) bool {
	n := g.ApplicationConfig.FrameCount
	return n == 0 || frame == n-1
}

// trackHover decodes the object under the centre of the target.
func (g *TestGame) trackHover(state *gameState) error {
	var px [4]uint8
	x, y := state.target.Width/2, state.target.Height/2
	if err := state.renderer.ReadPixels(state.target, x, y, 1, 1, px[:]); err != nil {
		return err
	}
	id := lmath.UnpackID(px[0], px[1], px[2])
	if id != state.hoveredObjectID {
		state.hoveredObjectID = id
		var ctx core.EventContext
		ctx.Data.U32[0] = id
		core.EventFire(EVENT_CODE_OBJECT_HOVERED, g, ctx)
	}
	return nil
}

// writeBitmap reads the target on the render goroutine and hands encoding
// to the job system.
func (g *TestGame) writeBitmap(state *gameState, name string) error {
	w, h := state.target.Width, state.target.Height
	pixels := make([]uint8, w*h*4)
	if err := state.renderer.ReadPixels(state.target, 0, 0, w, h, pixels); err != nil {
		return err
	}
	path := filepath.Join(state.outputDir, name)
	return state.systems.Jobs().Submit(metadata.JobTask{
		Name: "write " + name,
		Type: metadata.JobTypeFileWrite,
		Run: func() error {
			return encodeBitmap(path, pixels, w, h)
		},
		OnComplete: func() {
			core.LogDebug("wrote %s", path)
		},
	})
}

func encodeBitmap(path string, pixels []uint8, w, h int) error {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		// Pixels are read bottom row first.
		row := pixels[(h-1-y)*w*4:]
		for x := 0; x < w; x++ {
			p := row[x*4:]
			img.SetRGBA(x, y, color.RGBA{R: p[0], G: p[1], B: p[2], A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	state.WorldCamera.SetAspect(float32(width) / float32(height))

	state.renderer.DestroyRenderTarget(state.target)
	t, err := state.renderer.CreateRenderTarget(int(width), int(height))
	if err != nil {
		return err
	}
	state.target = t
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	state := g.State.(*gameState)
	core.EventUnregister(EVENT_CODE_OBJECT_HOVERED, g)
	core.EventUnregister(core.EVENT_CODE_PROPS_RELOADED, g)

	var err error
	if state.systems != nil {
		// Pending bitmaps are written before shutdown completes.
		err = state.systems.Shutdown()
		if n := state.systems.Jobs().Failed(); n > 0 {
			core.LogWarn("%d output files could not be written", n)
		}
	}
	if state.renderer != nil {
		state.renderer.DestroyRenderTarget(state.target)
		state.target = nil
	}
	for i, p := range state.programs {
		if p != nil {
			state.ctx.DeleteProgram(p)
			state.programs[i] = nil
		}
	}
	return err
}
