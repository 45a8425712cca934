// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"github.com/jmoiron/sqlx"
	"github.com/minaret-io/minaret/internal/model"
)

type Store interface {
	// mosque functions
	ListMosques() ([]model.Mosque, error)
	GetMosqueByID(id int) (*model.Mosque, error)

	// subscriber functions
	GetSubscriberByID(id int) (*model.Subscriber, error)
	GetSubscriberByEmail(email string) (*model.Subscriber, error)

	// timetable functions
	GetPrayerDay(mosqueID int, day string) (model.PrayerDay, error)

	// alert preference functions
	GetAlertPrefs(subscriberID, mosqueID int) (model.AlertPrefs, error)
	ListMosqueAlertPrefs(mosqueID int) ([]model.SubscriberPrefs, error)
	ListSubscribedMosques(subscriberID int) ([]int, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
// required so linter doesn't complain
var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}
