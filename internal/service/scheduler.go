package service

import (
	"context"
	"log"
	"time"
)

// Runner is the scheduled-job poller. Each tick it asks the push service to
// claim and execute due queued jobs through the same pipeline the immediate
// path uses.
type Runner struct {
	service  *PushService
	interval time.Duration
	limit    int
}

func NewRunner(service *PushService, interval time.Duration, limit int) *Runner {
	if interval <= 0 {
		interval = time.Minute
	}
	if limit <= 0 {
		limit = 10
	}
	return &Runner{service: service, interval: interval, limit: limit}
}

// Run polls until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	log.Printf("⏰ Scheduled push runner started (every %s, up to %d jobs per tick)", r.interval, r.limit)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏰ Scheduled push runner stopped")
			return
		case <-ticker.C:
			if err := r.service.RunDue(ctx, r.limit); err != nil {
				log.Printf("🚨 Scheduled poll cycle failed: %v", err)
			}
		}
	}
}
