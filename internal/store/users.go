package store

import (
	"context"
	"errors"
	"fmt"

	"ppr/internal/domain"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateUser(ctx context.Context, input UserInput) (int64, error) {
	roles := make([]string, 0, len(input.Roles))
	for _, role := range input.Roles {
		roles = append(roles, string(role))
	}
	var sectorID *int64
	if input.SectorID != 0 {
		sectorID = &input.SectorID
	}
	var id int64
	err := s.DB.QueryRow(ctx, `
		INSERT INTO users (name, email, roles, sector_id) VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name, roles=EXCLUDED.roles, sector_id=EXCLUDED.sector_id
		RETURNING id`, input.Name, input.Email, roles, sectorID).Scan(&id)
	return id, err
}

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, roles, sector_id, created_at FROM users WHERE id=$1`, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, roles, sector_id, created_at FROM users WHERE lower(email)=lower($1)`, email)
}

func (s *Store) getUser(ctx context.Context, query string, arg any) (domain.User, error) {
	var user domain.User
	var roles []string
	var sectorID *int64
	err := s.DB.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Name, &user.Email, &roles, &sectorID, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, fmt.Errorf("user %v: %w", arg, ErrNotFound)
		}
		return domain.User{}, err
	}
	for _, role := range roles {
		user.Roles = append(user.Roles, domain.Role(role))
	}
	if sectorID != nil {
		user.SectorID = *sectorID
	}
	return user, nil
}
