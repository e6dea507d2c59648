package scheduler

import "context"

// Job is a background task the scheduler can run on a cron schedule or on
// demand.
type Job interface {
	// GetName is the unique job name used for logs and on-demand runs.
	GetName() string

	// GetSchedule returns a cron spec such as "@every 10m". An empty schedule
	// registers the job for on-demand runs only.
	GetSchedule() string

	Execute(ctx context.Context) error
}
