package ratelimit

import (
	"context"
	"slices"
	"testing"
	"time"
)

func TestThrottle_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
		{
			name:     "zero rate disables throttling",
			rps:      0,
			burst:    1,
			calls:    50,
			wantPass: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := New(tt.rps, tt.burst)

			passed := 0
			for range tt.calls {
				if th.Allow("tobaccos") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestThrottle_GroupsAreIndependent(t *testing.T) {
	th := New(0.001, 1)

	if !th.Allow("tobaccos") {
		t.Fatal("first tobaccos call should pass")
	}
	if th.Allow("tobaccos") {
		t.Error("second tobaccos call should be throttled")
	}
	if !th.Allow("mixes") {
		t.Error("mixes has its own bucket")
	}

	groups := th.Groups()
	slices.Sort(groups)
	if !slices.Equal(groups, []string{"mixes", "tobaccos"}) {
		t.Errorf("Groups() = %v", groups)
	}
}

func TestThrottle_WaitRespectsContext(t *testing.T) {
	th := New(0.001, 1)
	th.Allow("mixes")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := th.Wait(ctx, "mixes"); err == nil {
		t.Error("Wait() should fail when the bucket cannot refill before the deadline")
	}
}

func TestThrottle_WaitDisabled(t *testing.T) {
	var th *Throttle
	if err := th.Wait(context.Background(), "user"); err != nil {
		t.Errorf("nil throttle Wait() = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New(0, 1).Wait(ctx, "user"); err == nil {
		t.Error("disabled throttle still reports a cancelled context")
	}
}

func TestGroupOf(t *testing.T) {
	tests := map[string]string{
		"/tobaccos":            "tobaccos",
		"/tobaccos/5":          "tobaccos",
		"/tobaccos/bulk":       "tobaccos",
		"/mixes?limit=20":      "mixes",
		"/mixes/favorites":     "mixes",
		"user/stats":           "user",
		"/":                    "root",
		"":                     "root",
		"/categories?x=1&y=2/": "categories",
	}

	for in, want := range tests {
		if got := GroupOf(in); got != want {
			t.Errorf("GroupOf(%q) = %q, want %q", in, got, want)
		}
	}
}
