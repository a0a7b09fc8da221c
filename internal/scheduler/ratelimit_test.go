package scheduler

import (
	"testing"

	"github.com/Bone-Club-Digital/clubhouse/internal/ratelimit"
)

func TestRegisterRateLimitPrune(t *testing.T) {
	svc, err := New()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer svc.Stop()

	if err := RegisterRateLimitPrune(svc, ratelimit.New(nil)); err != nil {
		t.Fatalf("register prune: %v", err)
	}
}

func TestRegisterRateLimitPruneRequiresLimiter(t *testing.T) {
	svc, err := New()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer svc.Stop()

	if err := RegisterRateLimitPrune(svc, nil); err == nil {
		t.Fatal("expected error for nil limiter")
	}
}
