package engine

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/gpu"
)

type ApplicationConfig struct {
	// Drawing buffer starting width.
	StartWidth uint32
	// Drawing buffer starting height.
	StartHeight uint32
	// The application name used in log output.
	Name     string
	LogLevel core.Level
	// Renderer properties file; empty keeps the defaults.
	PropsPath string
	// Reload PropsPath whenever it changes on disk.
	WatchProps bool
	// Number of frames Run draws before returning. Zero runs until the
	// context is cancelled.
	FrameCount uint64
	// Capability probe override for the headless context. Nil means all
	// extensions are present.
	Extensions *gpu.Extensions
}
