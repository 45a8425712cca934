package db

import (
	"database/sql"
	"errors"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/minaret-io/minaret/internal/model"
)

// lists every mosque with a published profile, oldest first.
func (s *pgStore) ListMosques() ([]model.Mosque, error) {
	var mosques []model.Mosque
	query := `
	SELECT id, name, city, address, created_at, updated_at
	FROM mosques
	ORDER BY id;
	`
	err := s.db.Select(&mosques, query)
	if err != nil {
		log.Error().Msg("failed to list mosques")
		return nil, err
	}
	return mosques, nil
}

// fetches a mosque by ID. returns nil, sql.ErrNoRows if not found.
func (s *pgStore) GetMosqueByID(id int) (*model.Mosque, error) {
	var m model.Mosque
	query := `
	SELECT id, name, city, address, created_at, updated_at
	FROM mosques
	WHERE id = $1;
	`
	err := s.db.Get(&m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Msg("failed to get mosque by id")
		return nil, err
	}
	return &m, nil
}
