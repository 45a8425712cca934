package db

import (
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/minaret-io/minaret/internal/model"
)

// fetches one subscriber's alert choices for one mosque, keyed by prayer name.
// a subscriber with no rows comes back with an empty map rather than an error.
func (s *pgStore) GetAlertPrefs(subscriberID, mosqueID int) (model.AlertPrefs, error) {
	var rows []struct {
		Prayer  string `db:"prayer"`
		OnAthan bool   `db:"on_athan"`
		OnIqama bool   `db:"on_iqama"`
	}
	query := `
	SELECT prayer, on_athan, on_iqama
	FROM alert_prefs
	WHERE subscriber_id = $1 AND mosque_id = $2;
	`
	err := s.db.Select(&rows, query, subscriberID, mosqueID)
	if err != nil {
		log.Error().Int("subscriber_id", subscriberID).Msg("failed to get alert prefs")
		return model.AlertPrefs{}, err
	}

	prefs := model.AlertPrefs{
		SubscriberID: subscriberID,
		MosqueID:     mosqueID,
		Prayers:      make(map[string]model.AlertPref, len(rows)),
	}
	for _, r := range rows {
		prefs.Prayers[r.Prayer] = model.AlertPref{OnAthan: r.OnAthan, OnIqama: r.OnIqama}
	}
	return prefs, nil
}

// fetches every subscriber holding alert choices for a mosque, joined with
// their current push token. rows are folded per subscriber so a sweep walks
// one entry per person, not one per prayer.
func (s *pgStore) ListMosqueAlertPrefs(mosqueID int) ([]model.SubscriberPrefs, error) {
	var rows []struct {
		SubscriberID int     `db:"subscriber_id"`
		PushToken    *string `db:"push_token"`
		Prayer       string  `db:"prayer"`
		OnAthan      bool    `db:"on_athan"`
		OnIqama      bool    `db:"on_iqama"`
	}
	query := `
	SELECT p.subscriber_id, s.push_token, p.prayer, p.on_athan, p.on_iqama
	FROM alert_prefs p
	JOIN subscribers s ON s.id = p.subscriber_id
	WHERE p.mosque_id = $1
	ORDER BY p.subscriber_id, p.prayer;
	`
	err := s.db.Select(&rows, query, mosqueID)
	if err != nil {
		log.Error().Int("mosque_id", mosqueID).Msg("failed to list mosque alert prefs")
		return nil, err
	}

	var out []model.SubscriberPrefs
	for _, r := range rows {
		if len(out) == 0 || out[len(out)-1].SubscriberID != r.SubscriberID {
			out = append(out, model.SubscriberPrefs{
				SubscriberID: r.SubscriberID,
				PushToken:    r.PushToken,
				Prayers:      make(map[string]model.AlertPref),
			})
		}
		out[len(out)-1].Prayers[r.Prayer] = model.AlertPref{OnAthan: r.OnAthan, OnIqama: r.OnIqama}
	}
	return out, nil
}

// lists the mosques a subscriber holds any alert choice for.
func (s *pgStore) ListSubscribedMosques(subscriberID int) ([]int, error) {
	var ids []int
	query := `
	SELECT DISTINCT mosque_id
	FROM alert_prefs
	WHERE subscriber_id = $1
	ORDER BY mosque_id;
	`
	err := s.db.Select(&ids, query, subscriberID)
	if err != nil {
		log.Error().Int("subscriber_id", subscriberID).Msg("failed to list subscribed mosques")
		return nil, err
	}
	return ids, nil
}
