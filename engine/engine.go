package engine

import (
	"context"
	"fmt"

	"github.com/spaghettifunk/lumen/engine/config"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/software"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Engine drives a Game frame by frame against a headless context.
type Engine struct {
	currentStage Stage
	gameInstance *Game
	isSuspended  bool
	gpu          *software.Context
	renderer     *renderer.Renderer
	watcher      *config.Watcher
	width        uint32
	height       uint32
	clock        *core.Clock
	lastTime     float64
	frames       uint64
	quit         bool
}

func New(g *Game) (*Engine, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	cfg := g.ApplicationConfig
	core.SetLogLevel(cfg.LogLevel)

	var opts []software.Option
	if cfg.Extensions != nil {
		opts = append(opts, software.WithExtensions(*cfg.Extensions))
	}
	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		gpu:          software.New(int(cfg.StartWidth), int(cfg.StartHeight), opts...),
		clock:        core.NewClock(),
		width:        cfg.StartWidth,
		height:       cfg.StartHeight,
	}
	core.EventInitialize()
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	return e, nil
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.quit = true
		return true
	}
	return false
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Context is the graphics context frames are drawn into.
func (e *Engine) Context() *software.Context {
	return e.gpu
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

// Initialize boots the game, creates the renderer with the configured
// properties and lets the game build its scene.
func (e *Engine) Initialize() error {
	cfg := e.gameInstance.ApplicationConfig

	e.currentStage = EngineStageBooting
	if e.gameInstance.FnBoot != nil {
		if err := e.gameInstance.FnBoot(); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageBootComplete

	e.currentStage = EngineStageInitializing
	var opts []renderer.Option
	if cfg.PropsPath != "" {
		pp, err := config.Load(cfg.PropsPath)
		if err != nil {
			return err
		}
		opts = append(opts, renderer.WithProps(pp))
		if cfg.WatchProps {
			if e.watcher, err = config.Watch(cfg.PropsPath); err != nil {
				return err
			}
		}
	}
	e.renderer = renderer.New(e.gpu, opts...)

	if err := e.gameInstance.FnInitialize(e.gpu, e.renderer); err != nil {
		return err
	}
	if err := e.Resize(e.width, e.height); err != nil {
		return err
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// Resize resizes the drawing buffer and the renderer viewport. A zero size
// suspends rendering until the next non-zero resize.
func (e *Engine) Resize(width, height uint32) error {
	e.width, e.height = width, height
	if width == 0 || height == 0 {
		core.LogInfo("Drawing buffer has no area, suspending application.")
		e.isSuspended = true
		return nil
	}
	if e.isSuspended {
		core.LogInfo("Drawing buffer restored, resuming application.")
		e.isSuspended = false
	}
	core.LogDebug("Drawing buffer resize: %d, %d", width, height)
	e.gpu.Resize(int(width), int(height))
	if err := e.renderer.SetViewport(0, 0, int(width), int(height)); err != nil {
		return err
	}
	var ctx core.EventContext
	ctx.Data.U32[0] = width
	ctx.Data.U32[1] = height
	core.EventFire(core.EVENT_CODE_RESIZED, e, ctx)
	if e.gameInstance.FnOnResize != nil {
		return e.gameInstance.FnOnResize(width, height)
	}
	return nil
}

// Run draws frames until ctx is done or the configured frame count is
// reached.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine run before initialize: %w", core.ErrInvalidArgument)
	}
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	limit := e.gameInstance.ApplicationConfig.FrameCount
	for !e.quit && (limit == 0 || e.frames < limit) {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		e.applyPropUpdates()
		if e.isSuspended {
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("Game update failed, shutting down: %v", err)
			return err
		}
		// Call the game's render routine.
		if err := e.gameInstance.FnRender(e.renderer, delta); err != nil {
			core.LogError("Game render failed, shutting down: %v", err)
			return err
		}
		e.frames++

		// Update last time
		e.lastTime = currentTime
	}
	return nil
}

func (e *Engine) applyPropUpdates() {
	if e.watcher == nil {
		return
	}
	for {
		select {
		case pp, ok := <-e.watcher.Updates():
			if !ok {
				return
			}
			core.LogInfo("applying reloaded renderer properties")
			e.renderer.SetProps(pp)
			var ctx core.EventContext
			ctx.Data.C[0] = e.gameInstance.ApplicationConfig.PropsPath
			core.EventFire(core.EVENT_CODE_PROPS_RELOADED, e, ctx)
		case err, ok := <-e.watcher.Errors():
			if !ok {
				return
			}
			core.LogWarn("renderer properties not reloaded: %v", err)
		default:
			return
		}
	}
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	var err error
	if e.gameInstance.FnShutdown != nil {
		err = e.gameInstance.FnShutdown()
	}
	if e.watcher != nil {
		if werr := e.watcher.Close(); werr != nil && err == nil {
			err = werr
		}
		e.watcher = nil
	}
	if e.renderer != nil {
		e.renderer.Dispose()
	}
	core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	e.currentStage = EngineStageUninitialized
	return err
}
