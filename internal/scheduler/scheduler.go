package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/pupwalk/pupwalk/internal/community"
	"github.com/pupwalk/pupwalk/internal/store"
	"github.com/pupwalk/pupwalk/internal/weather"
)

// Scheduler periodically re-fetches weather for every saved home location
// and warms the snapshot history store. It never serves user requests
// directly; those always fetch fresh.
type Scheduler struct {
	scheduler *gocron.Scheduler
	weather   *weather.Service
	community *community.Service
	snapshots *store.SnapshotStore
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, ws *weather.Service, cs *community.Service, snapshots *store.SnapshotStore) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		weather:   ws,
		community: cs,
		snapshots: snapshots,
		interval:  interval,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.refreshHomeLocations)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) refreshHomeLocations() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	locations, err := s.community.HomeLocations(ctx)
	if err != nil {
		log.Printf("scheduler: listing home locations failed: %v", err)
		return
	}
	if len(locations) == 0 {
		return
	}

	log.Printf("scheduler: refreshing %d home locations", len(locations))

	var wg sync.WaitGroup
	for _, loc := range locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			snap, err := s.weather.Snapshot(ctx, loc, time.Time{})
			if err != nil {
				log.Printf("scheduler: refresh failed for %q: %v", loc, err)
				return
			}
			s.snapshots.Save(loc, snap)
		}()
	}
	wg.Wait()
}
