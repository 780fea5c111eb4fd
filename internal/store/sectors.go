package store

import (
	"context"
	"errors"
	"fmt"

	"ppr/internal/domain"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateSector(ctx context.Context, input SectorInput) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
		INSERT INTO sectors (acronym, name) VALUES ($1, $2)
		ON CONFLICT (acronym) DO UPDATE SET name=EXCLUDED.name
		RETURNING id`, input.Acronym, input.Name).Scan(&id)
	return id, err
}

func (s *Store) GetSector(ctx context.Context, id int64) (domain.Sector, error) {
	var sector domain.Sector
	err := s.DB.QueryRow(ctx, `SELECT id, acronym, name FROM sectors WHERE id=$1`, id).Scan(&sector.ID, &sector.Acronym, &sector.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Sector{}, fmt.Errorf("sector %d: %w", id, ErrNotFound)
	}
	return sector, err
}

func (s *Store) ListSectors(ctx context.Context) ([]domain.Sector, error) {
	rows, err := s.DB.Query(ctx, `SELECT id, acronym, name FROM sectors ORDER BY acronym`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sectors := make([]domain.Sector, 0)
	for rows.Next() {
		var sector domain.Sector
		if err := rows.Scan(&sector.ID, &sector.Acronym, &sector.Name); err != nil {
			return nil, err
		}
		sectors = append(sectors, sector)
	}
	return sectors, rows.Err()
}
