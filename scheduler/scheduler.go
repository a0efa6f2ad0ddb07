package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work
type Job func() error

// Scheduler runs registered jobs at fixed local wall-clock times. Jobs are
// serialized with a mutex so an upload cycle never overlaps a render cycle
// on the same box.
type Scheduler struct {
	cron *cron.Cron
	loc  *time.Location
	mu   sync.Mutex
}

func New(timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc)),
		loc:  loc,
	}, nil
}

// AddDaily registers a job to fire every day at "HH:MM" local time. An
// unparseable time is warned about and skipped so one bad config line does
// not take down the whole schedule.
func (s *Scheduler) AddDaily(at, name string, job Job) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		log.Printf("[scheduler] ⚠️  invalid time %q for %s — skipping", at, name)
		return
	}

	spec := fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour())
	_, err = s.cron.AddFunc(spec, s.wrap(name, job))
	if err != nil {
		log.Printf("[scheduler] ⚠️  could not schedule %s at %s: %v", name, at, err)
		return
	}
	log.Printf("[scheduler] %s scheduled daily at %s (%s)", name, at, s.loc)
}

func (s *Scheduler) wrap(name string, job Job) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[scheduler] ⚠️  %s panicked: %v", name, r)
			}
		}()

		log.Printf("[scheduler] ▶ %s starting", name)
		start := time.Now()
		if err := job(); err != nil {
			log.Printf("[scheduler] ⚠️  %s failed after %s: %v", name, time.Since(start).Round(time.Second), err)
			return
		}
		log.Printf("[scheduler] ✅ %s finished in %s", name, time.Since(start).Round(time.Second))
	}
}

// Run starts the cron loop and blocks forever
func (s *Scheduler) Run() {
	log.Printf("[scheduler] loop started, %d job(s) registered", len(s.cron.Entries()))
	s.cron.Run()
}

// Stop halts the cron loop. Running jobs finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
