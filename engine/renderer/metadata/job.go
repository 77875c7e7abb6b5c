package metadata

/** @brief Describes a type of job */
type JobType int

const (
	/** @brief A job with no thread requirements. */
	JobTypeGeneral JobType = iota
	/**
	 * @brief A job writing renderer output to disk. Kept apart so that file
	 * writes can be drained before shutdown.
	 */
	JobTypeFileWrite
)

/**
 * @brief Describes a job to be run on a worker. Jobs never touch the graphics
 * context; pixels are read on the render goroutine and handed over.
 */
type JobTask struct {
	Name string
	Type JobType
	/** @brief The work itself. Required. */
	Run func() error
	/** @brief Invoked on the worker after Run succeeded. Optional. */
	OnComplete func()
	/** @brief Invoked on the worker with the error Run returned. Optional. */
	OnFailure func(err error)
}
