package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

const componentStats = "stats"

// StatsPoller refreshes the stats slots once at start and then on a fixed
// wall-clock interval. Runs are not chained, so slow requests may overlap.
type StatsPoller struct {
	c         *Context
	formatter *CountFormatter
	interval  time.Duration

	mu        sync.Mutex
	scheduler *gocron.Scheduler
}

func NewStatsPoller(c *Context, formatter *CountFormatter, interval time.Duration) *StatsPoller {
	return &StatsPoller{
		c:         c,
		formatter: formatter,
		interval:  interval,
	}
}

// Refresh fetches the stats and writes them, or ErrorMarker on failure, to the view.
func (p *StatsPoller) Refresh(ctx context.Context) error {
	stats, err := p.c.API.FetchStats(ctx)
	p.c.Metrics.ObserveRefresh(componentStats, err)
	if err != nil {
		p.c.Logger.Error("error fetching view stats", "error", err)
		p.c.View.setStats(StatsBoard{UniqueVisitors: ErrorMarker, TotalViews: ErrorMarker})
		return fmt.Errorf("failed to refresh stats: %w", err)
	}

	p.c.View.setStats(StatsBoard{
		UniqueVisitors: p.formatter.Format(stats.TotalUniqueVisitors),
		TotalViews:     p.formatter.Format(stats.TotalViews),
	})
	return nil
}

// Start runs Refresh immediately and then every interval until Stop.
func (p *StatsPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scheduler != nil {
		return fmt.Errorf("stats poller already started")
	}
	if p.interval <= 0 {
		return fmt.Errorf("stats interval must be positive, got %s", p.interval)
	}

	scheduler := gocron.NewScheduler(time.UTC)
	_, err := scheduler.Every(p.interval).StartImmediately().Do(func() {
		_ = p.Refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule stats refresh: %w", err)
	}
	scheduler.StartAsync()
	p.scheduler = scheduler

	p.c.Logger.Info("stats poller started", "interval", p.interval.String())
	return nil
}

// Stop ends the schedule. Requests already in flight run to completion.
func (p *StatsPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scheduler == nil {
		return
	}
	p.scheduler.Stop()
	p.scheduler = nil
}
