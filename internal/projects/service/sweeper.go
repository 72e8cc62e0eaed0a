package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/filmschedule/filmschedule-backend/internal/logging"
)

const sweepTimeout = 2 * time.Minute

// ArchiveSweeper periodically archives projects whose shoot days have all
// passed, so projects nobody lists still move to the archive.
type ArchiveSweeper struct {
	svc  *ProjectService
	cron *cron.Cron
}

func NewArchiveSweeper(svc *ProjectService) *ArchiveSweeper {
	return &ArchiveSweeper{svc: svc}
}

// RunOnce performs a single sweep.
func (s *ArchiveSweeper) RunOnce(ctx context.Context) (int, error) {
	n, err := s.svc.SweepArchived(ctx)
	if err != nil {
		return n, fmt.Errorf("archive sweep: %w", err)
	}
	return n, nil
}

// Start schedules the sweep. schedule uses the six-field cron format with
// seconds, e.g. "0 0 * * * *" for hourly.
func (s *ArchiveSweeper) Start(schedule string) error {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		log := logging.FromContext(ctx)
		n, err := s.RunOnce(ctx)
		if err != nil {
			log.WithError(err).Error("archive sweep failed")
			return
		}
		log.WithField("archived", n).Info("archive sweep completed")
	})
	if err != nil {
		return fmt.Errorf("schedule archive sweep %q: %w", schedule, err)
	}

	s.cron = c
	c.Start()
	logging.L().WithField("schedule", schedule).Info("archive sweep scheduler started")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *ArchiveSweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
