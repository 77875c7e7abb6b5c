package systems

// SystemManagerConfig sizes the systems a game drives next to the renderer.
type SystemManagerConfig struct {
	MaxCameraCount uint16
	// Workers encoding and writing frame output.
	JobWorkers   int
	JobQueueSize int
}

type SystemManager struct {
	cameraSystem *CameraSystem
	jobSystem    *JobSystem
}

func NewSystemManager(config SystemManagerConfig) (*SystemManager, error) {
	js, err := NewJobSystem(config.JobWorkers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}
	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: config.MaxCameraCount,
	})
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		cameraSystem: cs,
		jobSystem:    js,
	}, nil
}

func (sm *SystemManager) Cameras() *CameraSystem {
	return sm.cameraSystem
}

func (sm *SystemManager) Jobs() *JobSystem {
	return sm.jobSystem
}

// Shutdown drains pending jobs.
func (sm *SystemManager) Shutdown() error {
	return sm.jobSystem.Shutdown()
}
