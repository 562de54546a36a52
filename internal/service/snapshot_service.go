package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"blocknotes/internal/domain"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const snapshotJobKey = "snapshot"

// SnapshotService periodically records a version of every document that
// changed since its latest version.
type SnapshotService struct {
	docs     domain.DocumentStore
	versions domain.VersionStore
	svc      *DocumentService
	log      zerolog.Logger
	schedule string
	running  runningJobsGuard

	mu      sync.Mutex
	lastRun time.Time
	sched   *cron.Cron
}

func NewSnapshotService(docs domain.DocumentStore, versions domain.VersionStore, svc *DocumentService, log zerolog.Logger, schedule string) *SnapshotService {
	return &SnapshotService{
		docs:     docs,
		versions: versions,
		svc:      svc,
		log:      log.With().Str("component", "snapshot").Logger(),
		schedule: schedule,
	}
}

// Start schedules RunOnce. It returns an error for an invalid schedule.
func (s *SnapshotService) Start(ctx context.Context) error {
	s.Stop()

	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() {
		n, err := s.RunOnce(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("snapshot run failed")
			return
		}
		if n > 0 {
			s.log.Info().Int("versions", n).Msg("snapshot run complete")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", s.schedule, err)
	}
	c.Start()

	s.mu.Lock()
	s.sched = c
	s.mu.Unlock()
	s.log.Info().Str("schedule", s.schedule).Msg("snapshots scheduled")
	return nil
}

// Stop halts the schedule. It is safe to call when not started.
func (s *SnapshotService) Stop() {
	s.mu.Lock()
	c := s.sched
	s.sched = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// WaitRunning blocks until an in-flight run finishes or ctx is done.
func (s *SnapshotService) WaitRunning(ctx context.Context) {
	s.running.WaitAll(ctx)
}

// RunOnce snapshots changed documents and returns how many versions it
// created. A run that overlaps another returns immediately with zero.
func (s *SnapshotService) RunOnce(ctx context.Context) (int, error) {
	if !s.running.TryLock(snapshotJobKey) {
		s.log.Debug().Msg("snapshot already running")
		return 0, nil
	}
	defer s.running.Unlock(snapshotJobKey)

	s.mu.Lock()
	since := s.lastRun
	s.mu.Unlock()
	started := time.Now()

	docs, err := s.docs.ListDocumentsUpdatedSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("list changed documents: %w", err)
	}

	created := 0
	for i := range docs {
		d := &docs[i]
		latest, err := s.versions.LatestVersion(ctx, d.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return created, fmt.Errorf("latest version of %s: %w", d.ID, err)
		case latest.MarkdownContent == d.MarkdownContent:
			continue
		}
		if _, err := s.svc.snapshot(ctx, d, d.UserID); err != nil {
			return created, err
		}
		created++
	}

	s.mu.Lock()
	s.lastRun = started
	s.mu.Unlock()
	return created, nil
}
