package worker

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// NewScheduler returns a cron runner with job registered under schedule, e.g.
// "@weekly" or "0 8 * * MON". The caller starts and stops it.
func NewScheduler(schedule string, job cron.Job) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddJob(schedule, job); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return c, nil
}
