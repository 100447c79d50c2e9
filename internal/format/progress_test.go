package format

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestTrackerAverage(t *testing.T) {
	t.Parallel()
	tr := NewTracker(2)
	if tr.NumTasks() != 2 || tr.Average() != 0 {
		t.Fatalf("fresh tracker: tasks=%d avg=%f", tr.NumTasks(), tr.Average())
	}

	avg, _ := tr.Set(0, 0.25)
	if avg != 0.125 {
		t.Errorf("avg = %f, want 0.125", avg)
	}
	avg, _ = tr.Set(1, 0.75)
	if avg != 0.5 {
		t.Errorf("avg = %f, want 0.5", avg)
	}
}

func TestTrackerClampsAndIgnoresUnknownTasks(t *testing.T) {
	t.Parallel()
	tr := NewTracker(2)
	tr.Set(0, 1.5)
	tr.Set(1, -0.5)
	tr.Set(7, 0.9)
	tr.Set(-1, 0.9)
	if got := tr.Average(); got != 0.5 {
		t.Errorf("avg = %f, want 0.5", got)
	}
}

func TestTrackerWithoutTasks(t *testing.T) {
	t.Parallel()
	tr := NewTracker(-3)
	if tr.NumTasks() != 0 {
		t.Errorf("NumTasks = %d, want 0", tr.NumTasks())
	}
	if avg, eta := tr.Set(0, 1); avg != 0 || eta != 0 {
		t.Errorf("Set = (%f, %v), want zeros", avg, eta)
	}
}

func TestTrackerETA(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Unix(0, 0)}
	tr := newTrackerWithClock(1, clock.Now)

	if tr.ETA() != 0 {
		t.Errorf("ETA before any progress = %v, want 0", tr.ETA())
	}

	clock.Advance(time.Second)
	if _, eta := tr.Set(0, 0.005); eta != 0 {
		t.Errorf("ETA below the threshold = %v, want 0", eta)
	}

	clock.Advance(9 * time.Second)
	// 25% in 10s leaves 30s at the same pace.
	if _, eta := tr.Set(0, 0.25); eta != 30*time.Second {
		t.Errorf("ETA = %v, want 30s", eta)
	}

	if _, eta := tr.Set(0, 1); eta != 0 {
		t.Errorf("ETA when done = %v, want 0", eta)
	}
}

func TestTrackerETACapped(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Unix(0, 0)}
	tr := newTrackerWithClock(1, clock.Now)
	clock.Advance(time.Hour)
	if _, eta := tr.Set(0, 0.02); eta != MaxETA {
		t.Errorf("ETA = %v, want %v", eta, MaxETA)
	}
}

func TestTrackerConcurrentSet(t *testing.T) {
	t.Parallel()
	tr := NewTracker(4)
	var wg sync.WaitGroup
	for task := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= 100; i++ {
				tr.Set(task, float64(i)/100)
			}
		}()
	}
	wg.Wait()
	if got := tr.Average(); got != 1 {
		t.Errorf("avg = %f, want 1", got)
	}
}

func TestFormatETA(t *testing.T) {
	t.Parallel()
	tests := []struct {
		eta  time.Duration
		want string
	}{
		{0, "estimating"},
		{-time.Second, "estimating"},
		{500 * time.Millisecond, "< 1s"},
		{45 * time.Second, "45s"},
		{time.Minute, "1m"},
		{2*time.Minute + 30*time.Second, "2m30s"},
		{2*time.Minute + 30*time.Second + 900*time.Millisecond, "2m30s"},
		{2 * time.Hour, "2h"},
		{3*time.Hour + 45*time.Minute + 10*time.Second, "3h45m"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.eta); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.eta, got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		want     string
	}{
		{0, "░░░░░░░░░░"},
		{0.5, "█████░░░░░"},
		{0.99, "█████████░"},
		{1, "██████████"},
		{1.2, "██████████"},
		{-0.1, "░░░░░░░░░░"},
	}
	for _, tt := range tests {
		if got := ProgressBar(tt.progress, 10); got != tt.want {
			t.Errorf("ProgressBar(%v) = %s, want %s", tt.progress, got, tt.want)
		}
	}
}

func TestFormatProgressBarWithETA(t *testing.T) {
	t.Parallel()
	got := FormatProgressBarWithETA(0.425, 65*time.Second, 4)
	if want := "[█░░░]  42.50% ETA: 1m5s"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := FormatProgressBarWithETA(0, 0, 4); !strings.HasSuffix(got, "ETA: estimating") {
		t.Errorf("unknown ETA rendered as %q", got)
	}
}
