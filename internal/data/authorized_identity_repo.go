package data

// Package data provides PostgreSQL- and Redis-backed repositories.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/data/pgxutil"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/model"
	apperrors "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/errors"
)

// ErrIdentityNotFound is returned when no allow-list row matches.
var ErrIdentityNotFound = errors.New("authorized identity not found")

// AuthorizedIdentityRepo provides database operations for the allow-list that
// backs authorization lookups.
type AuthorizedIdentityRepo struct {
	DB *sql.DB
}

// NewAuthorizedIdentityRepo creates a new AuthorizedIdentityRepo.
func NewAuthorizedIdentityRepo(db *sql.DB) *AuthorizedIdentityRepo {
	return &AuthorizedIdentityRepo{DB: db}
}

const identityColumns = "id, email, name, role, created_at, updated_at"

// GetByEmail retrieves an allow-list row by normalized email.
// Returns ErrIdentityNotFound when no row matches.
func (r *AuthorizedIdentityRepo) GetByEmail(ctx context.Context, email string) (*model.AuthorizedIdentity, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, ErrIdentityNotFound
	}

	var out model.AuthorizedIdentity
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+identityColumns+` FROM authorized_identities WHERE email = $1`, email)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.AuthorizedIdentity])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("get identity by email: %w", err)
	}
	return &out, nil
}

// List retrieves all allow-list rows ordered by email.
func (r *AuthorizedIdentityRepo) List(ctx context.Context) ([]*model.AuthorizedIdentity, error) {
	var rowsOut []model.AuthorizedIdentity
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+identityColumns+` FROM authorized_identities ORDER BY email`)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.AuthorizedIdentity])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}

	res := make([]*model.AuthorizedIdentity, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Upsert creates or replaces the allow-list row for the request's email.
func (r *AuthorizedIdentityRepo) Upsert(ctx context.Context, req *model.UpsertIdentityRequest) (*model.AuthorizedIdentity, error) {
	if req == nil {
		return nil, errors.New("upsert identity request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.AuthorizedIdentity
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO authorized_identities (email, name, role)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO UPDATE
			SET name = EXCLUDED.name, role = EXCLUDED.role, updated_at = now()
			RETURNING `+identityColumns,
			model.NormalizeEmail(req.Email),
			strings.TrimSpace(req.Name),
			req.Role,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.AuthorizedIdentity])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete removes the allow-list row for email. Returns false when no row existed.
func (r *AuthorizedIdentityRepo) Delete(ctx context.Context, email string) (bool, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}

	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM authorized_identities WHERE email = $1`, email)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete identity: %w", err)
	}
	return affected > 0, nil
}
