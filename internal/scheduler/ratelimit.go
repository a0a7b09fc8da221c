package scheduler

import (
	"fmt"
	"time"

	"github.com/Bone-Club-Digital/clubhouse/internal/ratelimit"
)

const (
	limiterPruneCron    = "*/10 * * * *"
	limiterMaxIdle      = 30 * time.Minute
	limiterPruneJobName = "ratelimit_prune"
)

// RegisterRateLimitPrune evicts idle per-client buckets on a fixed
// schedule so a long-running server does not accumulate them forever.
func RegisterRateLimitPrune(svc *Service, limiter *ratelimit.Limiter) error {
	if limiter == nil {
		return fmt.Errorf("rate limit prune requires limiter")
	}
	if _, err := svc.AddJob(limiterPruneJobName, limiterPruneCron, func() {
		limiter.Prune(limiterMaxIdle)
	}); err != nil {
		return fmt.Errorf("register rate limit prune: %w", err)
	}
	return nil
}
