// Package trigger schedules walk executions.
package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/bakkerme/pagewalk/internal/core"
	"github.com/robfig/cron/v3"
)

// Cron fires a trigger event on a cron schedule. An event is dropped when the
// previous one has not been consumed yet, so a slow session never queues up
// a backlog of runs.
type Cron struct {
	schedule string
	timezone string
	cron     *cron.Cron
	events   chan core.TriggerEvent
}

func NewCron(schedule, timezone string) (*Cron, error) {
	if schedule == "" {
		return nil, fmt.Errorf("cron schedule is required")
	}
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return nil, fmt.Errorf("invalid timezone: %w", err)
		}
	}
	return &Cron{schedule: schedule, timezone: timezone}, nil
}

func (c *Cron) Start(ctx context.Context, walkID string) (<-chan core.TriggerEvent, error) {
	location := time.UTC
	if c.timezone != "" {
		tz, err := time.LoadLocation(c.timezone)
		if err != nil {
			return nil, err
		}
		location = tz
	}

	c.events = make(chan core.TriggerEvent, 1)
	c.cron = cron.New(cron.WithLocation(location))
	_, err := c.cron.AddFunc(c.schedule, func() {
		select {
		case c.events <- core.TriggerEvent{WalkID: walkID, Timestamp: time.Now().UTC()}:
		default:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", c.schedule, err)
	}

	c.cron.Start()

	go func() {
		<-ctx.Done()
		_ = c.Stop()
	}()

	return c.events, nil
}

func (c *Cron) Stop() error {
	if c.cron != nil {
		stopCtx := c.cron.Stop()
		<-stopCtx.Done()
		c.cron = nil
	}
	if c.events != nil {
		close(c.events)
		c.events = nil
	}
	return nil
}
