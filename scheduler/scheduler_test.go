package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestNewBadTimezone(t *testing.T) {
	_, err := New("Mars/Olympus_Mons")
	if err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestAddDailyRegistersEntry(t *testing.T) {
	s, err := New("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	s.AddDaily("09:30", "short cycle", func() error { return nil })
	s.AddDaily("21:00", "long cycle", func() error { return nil })
	assert.Equal(t, len(s.cron.Entries()), 2)
}

func TestAddDailyInvalidTimeSkipped(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}
	s.AddDaily("9:99", "broken", func() error { return nil })
	s.AddDaily("noon", "also broken", func() error { return nil })
	assert.Equal(t, len(s.cron.Entries()), 0)
}

func TestWrapSerializesJobs(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	running := 0
	maxRunning := 0

	job := s.wrap("probe", func() error {
		mu.Lock()
		running++
		if running > maxRunning {
			maxRunning = running
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		running--
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job()
		}()
	}
	wg.Wait()

	assert.Equal(t, maxRunning, 1)
}

func TestWrapRecoversPanic(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}
	job := s.wrap("explosive", func() error { panic("boom") })
	job() // must not propagate
}

func TestWrapReportsJobError(t *testing.T) {
	s, err := New("UTC")
	if err != nil {
		t.Fatal(err)
	}
	job := s.wrap("flaky", func() error { return errors.New("render failed") })
	job() // error is logged, never panics
}
