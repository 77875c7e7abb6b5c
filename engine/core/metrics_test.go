package core

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRollingAverage(t *testing.T) {
	m := NewMetrics()
	assert.Zero(t, m.FrameTime())

	m.Update(0.002)
	m.Update(0.004)
	assert.InDelta(t, 3.0, m.FrameTime(), 1e-9)

	// Fill the window with 1ms frames; the early frames fall out.
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.001)
	}
	assert.InDelta(t, 1.0, m.FrameTime(), 1e-9)
}

func TestMetricsFramesPerSecond(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 3; i++ {
		m.Update(0.3)
	}
	fps, _ := m.Frame()
	assert.Zero(t, fps, "less than a second has passed")

	m.Update(0.3)
	fps, _ = m.Frame()
	assert.Equal(t, float64(3), fps)
}

func TestClockStopFreezesElapsed(t *testing.T) {
	c := NewClock()
	c.Update()
	assert.Zero(t, c.Elapsed(), "an unstarted clock does not advance")

	c.Start()
	time.Sleep(2 * time.Millisecond)
	c.Stop()
	elapsed := c.Elapsed()
	assert.Greater(t, elapsed, 0.0)

	time.Sleep(2 * time.Millisecond)
	c.Update()
	assert.Equal(t, elapsed, c.Elapsed())
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, WarnLevel)
	l.Infof("hidden %d", 1)
	assert.Empty(t, buf.String())

	l.Warnf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}
