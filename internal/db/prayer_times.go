package db

import (
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/minaret-io/minaret/internal/model"
)

// fetches a mosque's published timetable for one civil day ("YYYY-MM-DD").
// a day with nothing published comes back with an empty Prayers slice rather
// than an error, since unpublished days are a normal condition for sweeps.
func (s *pgStore) GetPrayerDay(mosqueID int, day string) (model.PrayerDay, error) {
	pd := model.PrayerDay{MosqueID: mosqueID, Day: day}
	query := `
	SELECT prayer, athan_at, iqama_at
	FROM prayer_times
	WHERE mosque_id = $1 AND day = $2
	ORDER BY athan_at NULLS LAST, prayer;
	`
	err := s.db.Select(&pd.Prayers, query, mosqueID, day)
	if err != nil {
		log.Error().Int("mosque_id", mosqueID).Msg("failed to get prayer day")
		return model.PrayerDay{}, err
	}
	return pd, nil
}
