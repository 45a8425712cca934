package model

import "time"

// Mosque is a venue that publishes a daily prayer timetable.
// Profiles are owned by the venue administrators; the scheduler only reads them.
type Mosque struct {
	ID        int       `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	City      *string   `db:"city"       json:"city"`
	Address   *string   `db:"address"    json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
