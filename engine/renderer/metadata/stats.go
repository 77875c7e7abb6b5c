package metadata

/** @brief Read-only renderer counters. */
type Stats struct {
	ProgramCount     int
	ShaderCount      int
	TextureCount     int
	FramebufferCount int

	/** @brief Draw calls issued by the last Render call. */
	DrawCount          int
	InstanceCount      int
	InstancedDrawCount int
	/** @brief State changes that reached the context during the last Render call. */
	StateChangeCount int
	/** @brief Redundant state changes dropped during the last Render call. */
	StateSkipCount int

	FrameCount uint64
	/** @brief Rolling average of frame time in milliseconds. */
	FrameTimeMS float64
}
