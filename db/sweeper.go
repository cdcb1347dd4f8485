package db

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper periodically deletes expired reports.
type Sweeper struct {
	store *ReportStore
	cron  *cron.Cron
}

func NewSweeper(store *ReportStore, schedule string) (*Sweeper, error) {
	s := &Sweeper{
		store: store,
		cron:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
	if _, err := s.cron.AddFunc(schedule, s.Sweep); err != nil {
		return nil, errors.Wrapf(err, "invalid sweep schedule %q", schedule)
	}
	return s, nil
}

func (s *Sweeper) Sweep() {
	n, err := s.store.DeleteExpired(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Failed to sweep expired reports")
		return
	}
	if n > 0 {
		logrus.WithField("deleted", n).Info("Swept expired reports")
	}
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
