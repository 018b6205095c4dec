package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sessionCleanupSchedule = "@hourly"

// Scheduler runs periodic maintenance jobs against the database.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *logrus.Logger
}

func newScheduler(db *sql.DB, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start runs the session cleanup once right away and then on schedule.
func (s *Scheduler) Start() error {
	s.cleanupSessions()

	if _, err := s.cron.AddFunc(sessionCleanupSchedule, s.cleanupSessions); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.WithField("jobs", len(s.cron.Entries())).Info("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) cleanupSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := cleanupExpiredSessions(ctx, s.db)
	if err != nil {
		s.logger.WithError(err).Error("cleaning up expired sessions")
		return
	}
	if n > 0 {
		s.logger.WithField("removed", n).Info("expired sessions removed")
	}
}
