package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/minaret-io/minaret/internal/model"
)

var Rdb *redis.Client

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

func prayerDayKey(mosqueID int, day string) string {
	return fmt.Sprintf("prayerday:%d:%s", mosqueID, day)
}

// stores a mosque's timetable for one day. timetables are immutable once
// published, so the entry only needs to live until the day is over.
// a nil Rdb (cache disabled) is a silent no-op.
func CachePrayerDay(ctx context.Context, pd model.PrayerDay, ttl time.Duration) {
	if Rdb == nil {
		return
	}
	raw, err := json.Marshal(pd)
	if err != nil {
		log.Error().Int("mosque_id", pd.MosqueID).Msg("failed to marshal prayer day for cache")
		return
	}
	if err := Rdb.Set(ctx, prayerDayKey(pd.MosqueID, pd.Day), raw, ttl).Err(); err != nil {
		log.Error().Err(err).Int("mosque_id", pd.MosqueID).Msg("failed to cache prayer day")
	}
}

// fetches a cached timetable. the second return is false on a miss, on a
// disabled cache, or on any redis error, so callers always fall back to SQL.
func GetCachedPrayerDay(ctx context.Context, mosqueID int, day string) (model.PrayerDay, bool) {
	if Rdb == nil {
		return model.PrayerDay{}, false
	}
	raw, err := Rdb.Get(ctx, prayerDayKey(mosqueID, day)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Error().Err(err).Int("mosque_id", mosqueID).Msg("failed to read cached prayer day")
		}
		return model.PrayerDay{}, false
	}
	var pd model.PrayerDay
	if err := json.Unmarshal(raw, &pd); err != nil {
		log.Error().Int("mosque_id", mosqueID).Msg("failed to unmarshal cached prayer day")
		return model.PrayerDay{}, false
	}
	return pd, true
}
