package model

import "time"

// PrayerTime is one published prayer for a mosque on a given day.
// AthanAt is the published call instant, IqamaAt the congregation instant;
// either may be absent.
type PrayerTime struct {
	Name    string     `db:"prayer"   json:"prayer"`
	AthanAt *time.Time `db:"athan_at" json:"athan_at"`
	IqamaAt *time.Time `db:"iqama_at" json:"iqama_at"`
}

// PrayerDay is a mosque's published timetable for one civil day,
// immutable once published. Day is "YYYY-MM-DD" in the operating timezone;
// the instants themselves are absolute.
type PrayerDay struct {
	MosqueID int          `json:"mosque_id"`
	Day      string       `json:"day"`
	Prayers  []PrayerTime `json:"prayers"`
}
