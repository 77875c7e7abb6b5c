package core

import "github.com/spaghettifunk/lumen/engine/containers"

const AVG_COUNT uint8 = 30

// Metrics keeps a rolling average over the last AVG_COUNT frame times and a
// frames-per-second counter. Owned by a single renderer; not safe for
// concurrent use.
type Metrics struct {
	MStimes            *containers.RingQueue[float64]
	MSsum              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
}

func NewMetrics() *Metrics {
	return &Metrics{MStimes: containers.NewRingQueue[float64](int(AVG_COUNT))}
}

// Update records one frame that took frameElapsedTime seconds.
func (m *Metrics) Update(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0
	if oldest, ok := m.MStimes.Push(frameMS); ok {
		m.MSsum -= oldest
	}
	m.MSsum += frameMS

	// Calculate Frames per second.
	m.AccumulatedFrameMS += frameMS
	if m.AccumulatedFrameMS > 1000 {
		m.FPS = float64(m.Frames)
		m.AccumulatedFrameMS -= 1000
		m.Frames = 0
	}

	// Count all Frames.
	m.Frames++
}

// FrameTime is the average frame time in milliseconds over the window.
func (m *Metrics) FrameTime() float64 {
	if m.MStimes.IsEmpty() {
		return 0
	}
	return m.MSsum / float64(m.MStimes.Len())
}

func (m *Metrics) Frame() (float64, float64) {
	return m.FPS, m.FrameTime()
}
