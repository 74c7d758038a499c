// Package scheduler runs the periodic reminder sweep.  The sweep reads
// real flight rows and publishes one broker event per upcoming
// departure; dispatch happens in the queue consumer.
package scheduler

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adamwrona/airport-ops/internal/logger"
	"github.com/adamwrona/airport-ops/internal/metrics"
	"github.com/adamwrona/airport-ops/internal/queue"
	"github.com/adamwrona/airport-ops/internal/repository"
	queue_publisher "github.com/adamwrona/airport-ops/internal/service"
)

// ReminderSweep scans for flights departing within Horizon every
// Interval and publishes a FlightReminderEvent per flight.  Redis
// SETNX keys suppress duplicate reminders across sweeps;
// when Redis is down the sweep still runs and duplicates are accepted.
type ReminderSweep struct {
	Flights  *repository.FlightRepo
	Redis    *redis.Client // may be nil
	Log      logger.Logger
	Metrics  *metrics.Metrics
	Interval time.Duration
	Horizon  time.Duration
}

// Run blocks until ctx is cancelled, sweeping once per interval.  An
// immediate first sweep runs on startup.
func (s *ReminderSweep) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.Log.Info("reminder sweep stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ReminderSweep) sweep(ctx context.Context) {
	now := time.Now().UTC()
	qctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	flights, err := s.Flights.ListDepartingBetween(qctx, now, now.Add(s.Horizon))
	if err != nil {
		s.Log.Error("reminder sweep query failed", "error", err)
		return
	}

	published := 0
	for _, f := range flights {
		if !s.claim(qctx, f.FlightID) {
			continue // already reminded within the horizon
		}
		ev := queue.FlightReminderEvent{
			FlightID:       f.FlightID,
			Aircraft:       f.Aircraft,
			DepartureAt:    f.DepartureAt.Format(time.RFC3339),
			TakeoffAirport: f.TakeoffAirport,
			LandingAirport: f.LandingAirport,
			PilotEmails:    f.PilotEmails,
			SweptAt:        now.Format(time.RFC3339),
		}
		if err := queue_publisher.PublishFlightReminder(qctx, s.Log, ev); err != nil {
			s.release(qctx, f.FlightID) // let the next sweep retry
			continue
		}
		if s.Metrics != nil {
			s.Metrics.RemindersPublished.Inc()
		}
		published++
	}
	s.Log.Info("reminder sweep finished", "due", len(flights), "published", published)
}

// claim marks a flight as reminded for the length of the horizon.
// Best effort: a nil or failing Redis claims everything.
func (s *ReminderSweep) claim(ctx context.Context, flightID uint64) bool {
	if s.Redis == nil {
		return true
	}
	key := reminderKey(flightID)
	ok, err := s.Redis.SetNX(ctx, key, 1, s.Horizon).Result()
	if err != nil {
		return true
	}
	return ok
}

func (s *ReminderSweep) release(ctx context.Context, flightID uint64) {
	if s.Redis == nil {
		return
	}
	_ = s.Redis.Del(ctx, reminderKey(flightID)).Err()
}

func reminderKey(flightID uint64) string {
	return "reminder:flight:" + strconv.FormatUint(flightID, 10)
}
