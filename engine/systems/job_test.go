package systems

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func TestNewJobSystemValidates(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsJobs(t *testing.T) {
	js, err := NewJobSystem(3, 4)
	require.NoError(t, err)

	var ran, completed, failed atomic.Int32
	boom := errors.New("boom")
	for i := 0; i < 10; i++ {
		fail := i%5 == 0
		require.NoError(t, js.Submit(metadata.JobTask{
			Name: "count",
			Run: func() error {
				ran.Add(1)
				if fail {
					return boom
				}
				return nil
			},
			OnComplete: func() { completed.Add(1) },
			OnFailure: func(err error) {
				assert.ErrorIs(t, err, boom)
				failed.Add(1)
			},
		}))
	}
	js.Wait()
	assert.Equal(t, int32(10), ran.Load())
	assert.Equal(t, int32(8), completed.Load())
	assert.Equal(t, int32(2), failed.Load())
	assert.Equal(t, 2, js.Failed())

	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())
	assert.ErrorIs(t, js.Submit(metadata.JobTask{Run: func() error { return nil }}), ErrJobSystemClosed)
}

func TestJobSystemRejectsEmptyJobs(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)
	defer js.Shutdown()
	assert.ErrorIs(t, js.Submit(metadata.JobTask{Name: "nothing"}), core.ErrInvalidArgument)
}

func TestSystemManager(t *testing.T) {
	_, err := NewSystemManager(SystemManagerConfig{MaxCameraCount: 1})
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewSystemManager(SystemManagerConfig{JobWorkers: 1})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	sm, err := NewSystemManager(SystemManagerConfig{MaxCameraCount: 2, JobWorkers: 1})
	require.NoError(t, err)
	assert.NotNil(t, sm.Cameras().GetDefault())
	require.NoError(t, sm.Jobs().Submit(metadata.JobTask{Run: func() error { return nil }}))
	require.NoError(t, sm.Shutdown())
}
