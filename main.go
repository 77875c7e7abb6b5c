/*
This is an example of application that will use the
engine package to render a small scene headlessly
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/testbed"
)

func main() {
	var (
		opts  testbed.Options
		debug bool
	)
	width := flag.Uint("width", 640, "drawing buffer width")
	height := flag.Uint("height", 360, "drawing buffer height")
	flag.StringVar(&opts.PropsPath, "props", "", "renderer properties file (TOML)")
	flag.BoolVar(&opts.WatchProps, "watch", false, "reload the properties file when it changes")
	flag.Uint64Var(&opts.FrameCount, "frames", 1, "frames to render; 0 renders until interrupted")
	flag.StringVar(&opts.OutputDir, "out", "", "directory the last frame's bitmaps are written to")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()

	opts.Width, opts.Height = uint32(*width), uint32(*height)
	opts.LogLevel = core.InfoLevel
	if debug {
		opts.LogLevel = core.DebugLevel
	}

	tb := testbed.NewTestGame(opts)

	e, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("%v", err)
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal("%v", err)
	}

	// signal channel to capture system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	// run engine
	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %v", err)
	}
	if runErr != nil {
		core.LogError("%v", runErr)
		os.Exit(1)
	}
}
