package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/minaret-io/minaret/internal/db"
	"github.com/minaret-io/minaret/internal/model"
	"github.com/minaret-io/minaret/internal/redis"
)

// AlertScheduler is what a sweep needs from the scheduling side. Tests
// swap in a recorder; production wires a TaskScheduler.
type AlertScheduler interface {
	Schedule(ctx context.Context, name string, payload DispatchPayload, fireAt time.Time) (Outcome, error)
}

var _ AlertScheduler = (*TaskScheduler)(nil)

// Sweeper walks mosques and subscribers and schedules every remaining
// alert for today. Sweeps are idempotent end to end: every task name is
// derived, so re-running one only produces duplicates, never double sends.
type Sweeper struct {
	store db.Store
	sched AlertScheduler
	loc   *time.Location

	// injectable clock, tests pin it
	now func() time.Time
}

func NewSweeper(store db.Store, sched AlertScheduler, loc *time.Location) *Sweeper {
	return &Sweeper{store: store, sched: sched, loc: loc, now: time.Now}
}

type sweepCounts struct {
	scheduled int
	duplicate int
	skipped   int
	failed    int
}

func (c *sweepCounts) add(o sweepCounts) {
	c.scheduled += o.scheduled
	c.duplicate += o.duplicate
	c.skipped += o.skipped
	c.failed += o.failed
}

// SweepAll covers every mosque's timetable for today. A failure on one
// mosque or one subscriber is logged and counted but never stops the rest
// of the sweep, so triggers can fire this without checking anything after.
func (s *Sweeper) SweepAll(ctx context.Context) {
	now := s.now()
	day := now.In(s.loc).Format("2006-01-02")
	logger := log.With().Str("sweep_id", uuid.NewString()).Str("day", day).Logger()

	mosques, err := s.store.ListMosques()
	if err != nil {
		logger.Error().Err(err).Msg("failed to list mosques, nothing to sweep")
		return
	}

	var counts sweepCounts
	for _, m := range mosques {
		counts.add(s.sweepMosque(ctx, &logger, m, day, now))
	}

	logger.Info().
		Int("mosques", len(mosques)).
		Int("scheduled", counts.scheduled).
		Int("duplicate", counts.duplicate).
		Int("skipped", counts.skipped).
		Int("failed", counts.failed).
		Msg("sweep complete")
}

// SweepSubscriber covers one subscriber's mosques for today, scheduling
// against the push token handed in. Used by resync, where the device has a
// fresh token and earlier tasks written against the old one are left to
// fire into the void.
func (s *Sweeper) SweepSubscriber(ctx context.Context, subscriberID int, pushToken string) {
	now := s.now()
	day := now.In(s.loc).Format("2006-01-02")
	logger := log.With().
		Str("sweep_id", uuid.NewString()).
		Str("day", day).
		Int("subscriber_id", subscriberID).
		Logger()

	if pushToken == "" {
		logger.Info().Msg("no push token, nothing to schedule")
		return
	}

	mosqueIDs, err := s.store.ListSubscribedMosques(subscriberID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list subscribed mosques, nothing to sweep")
		return
	}

	var counts sweepCounts
	for _, mosqueID := range mosqueIDs {
		m, err := s.store.GetMosqueByID(mosqueID)
		if err != nil {
			logger.Error().Err(err).Int("mosque_id", mosqueID).Msg("failed to get mosque")
			counts.failed++
			continue
		}

		pd, err := s.prayerDay(ctx, mosqueID, day, now)
		if err != nil {
			logger.Error().Err(err).Int("mosque_id", mosqueID).Msg("failed to load prayer day")
			counts.failed++
			continue
		}
		if len(pd.Prayers) == 0 {
			counts.skipped++
			continue
		}

		prefs, err := s.store.GetAlertPrefs(subscriberID, mosqueID)
		if err != nil {
			logger.Error().Err(err).Int("mosque_id", mosqueID).Msg("failed to get alert prefs")
			counts.failed++
			continue
		}

		sub := model.SubscriberPrefs{
			SubscriberID: subscriberID,
			PushToken:    &pushToken,
			Prayers:      prefs.Prayers,
		}
		counts.add(s.sweepSubscriberDay(ctx, &logger, *m, pd, sub, now))
	}

	logger.Info().
		Int("mosques", len(mosqueIDs)).
		Int("scheduled", counts.scheduled).
		Int("duplicate", counts.duplicate).
		Int("skipped", counts.skipped).
		Int("failed", counts.failed).
		Msg("resync sweep complete")
}

func (s *Sweeper) sweepMosque(ctx context.Context, logger *zerolog.Logger, m model.Mosque, day string, now time.Time) sweepCounts {
	var counts sweepCounts

	pd, err := s.prayerDay(ctx, m.ID, day, now)
	if err != nil {
		logger.Error().Err(err).Int("mosque_id", m.ID).Msg("failed to load prayer day")
		counts.failed++
		return counts
	}
	if len(pd.Prayers) == 0 {
		// nothing published for today
		counts.skipped++
		return counts
	}

	subs, err := s.store.ListMosqueAlertPrefs(m.ID)
	if err != nil {
		logger.Error().Err(err).Int("mosque_id", m.ID).Msg("failed to list alert prefs")
		counts.failed++
		return counts
	}

	for _, sub := range subs {
		counts.add(s.sweepSubscriberDay(ctx, logger, m, pd, sub, now))
	}
	return counts
}

func (s *Sweeper) sweepSubscriberDay(ctx context.Context, logger *zerolog.Logger, m model.Mosque, pd model.PrayerDay, sub model.SubscriberPrefs, now time.Time) sweepCounts {
	var counts sweepCounts

	if sub.PushToken == nil || *sub.PushToken == "" {
		// no registered device, nothing to deliver to
		counts.skipped++
		return counts
	}
	token := *sub.PushToken

	for _, alert := range ResolveAlerts(pd, sub.Prayers, now) {
		name := DeriveTaskName(alert.Prayer, alert.Kind, m.ID, token, alert.FireAt)
		payload := BuildPush(token, m.Name, m.ID, alert)

		outcome, err := s.sched.Schedule(ctx, name, payload, alert.FireAt)
		if err != nil {
			logger.Error().Err(err).
				Int("mosque_id", m.ID).
				Int("subscriber_id", sub.SubscriberID).
				Str("prayer", alert.Prayer).
				Str("alert", string(alert.Kind)).
				Msg("failed to schedule alert")
			counts.failed++
			continue
		}
		if outcome == OutcomeDuplicate {
			logger.Debug().
				Str("task", name).
				Msg("alert already scheduled")
			counts.duplicate++
		} else {
			counts.scheduled++
		}
	}
	return counts
}

// read-through: timetables are immutable once published, so a cached day
// is as good as the database's.
func (s *Sweeper) prayerDay(ctx context.Context, mosqueID int, day string, now time.Time) (model.PrayerDay, error) {
	if pd, ok := redis.GetCachedPrayerDay(ctx, mosqueID, day); ok {
		return pd, nil
	}
	pd, err := s.store.GetPrayerDay(mosqueID, day)
	if err != nil {
		return model.PrayerDay{}, err
	}
	if len(pd.Prayers) > 0 {
		redis.CachePrayerDay(ctx, pd, ttlUntilMidnight(now, s.loc))
	}
	return pd, nil
}

func ttlUntilMidnight(now time.Time, loc *time.Location) time.Duration {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	ttl := midnight.Sub(now)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}
