package model

import "time"

// Subscriber is an app user who may hold alert preferences per mosque.
// PushToken is the current delivery address; nil means no push device is
// registered and the scheduler skips the subscriber silently.
type Subscriber struct {
	ID             int       `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	Name           *string   `db:"name"`
	PushToken      *string   `db:"push_token"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
