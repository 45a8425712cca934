package db

import (
	"database/sql"
	"errors"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/minaret-io/minaret/internal/model"
)

// fetches a subscriber by email. returns nil, sql.ErrNoRows if not found.
func (s *pgStore) GetSubscriberByEmail(email string) (*model.Subscriber, error) {
	var sub model.Subscriber
	query := `
	SELECT id, email, hashed_password, name, push_token, created_at, updated_at
	FROM subscribers
	WHERE email = $1;
	`
	err := s.db.Get(&sub, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Msg("failed to get subscriber by email")
		return nil, err
	}
	return &sub, nil
}

// fetches a subscriber by ID. returns nil, sql.ErrNoRows if not found.
func (s *pgStore) GetSubscriberByID(id int) (*model.Subscriber, error) {
	var sub model.Subscriber
	query := `
	SELECT id, email, hashed_password, name, push_token, created_at, updated_at
	FROM subscribers
	WHERE id = $1;
	`
	err := s.db.Get(&sub, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Msg("failed to get subscriber by id")
		return nil, err
	}
	return &sub, nil
}
