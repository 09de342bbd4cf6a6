package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/data/pgxutil"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/model"
	apperrors "github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/errors"
)

// ErrBannerNotFound is returned when a banner is not found.
var ErrBannerNotFound = errors.New("banner not found")

// BannerRepo provides database operations for homepage banners.
type BannerRepo struct {
	DB *sql.DB
}

// NewBannerRepo creates a new BannerRepo.
func NewBannerRepo(db *sql.DB) *BannerRepo {
	return &BannerRepo{DB: db}
}

const bannerColumns = "id, title, image_url, link_url, active, position, created_at, updated_at"

// Create inserts a new banner.
func (r *BannerRepo) Create(ctx context.Context, req *model.CreateBannerRequest) (*model.Banner, error) {
	if req == nil {
		return nil, errors.New("create banner request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Default active to true if not specified (matches DB default)
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	var out model.Banner
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO banners (title, image_url, link_url, active, position)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+bannerColumns,
			strings.TrimSpace(req.Title),
			strings.TrimSpace(req.ImageURL),
			req.LinkURL,
			active,
			req.Position,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Banner])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a banner by ID.
func (r *BannerRepo) GetByID(ctx context.Context, id string) (*model.Banner, error) {
	var out model.Banner
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+bannerColumns+` FROM banners WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Banner])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBannerNotFound
		}
		return nil, fmt.Errorf("get banner by ID: %w", err)
	}
	return &out, nil
}

// List retrieves banners ordered by position. When activeOnly is true only
// active banners are returned (the public listing).
func (r *BannerRepo) List(ctx context.Context, activeOnly bool) ([]*model.Banner, error) {
	query := `SELECT ` + bannerColumns + ` FROM banners`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY position, created_at`

	var rowsOut []model.Banner
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Banner])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}

	res := make([]*model.Banner, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a banner.
func (r *BannerRepo) Update(ctx context.Context, id string, req model.UpdateBannerRequest) (*model.Banner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setClause, args := buildBannerUpdateClause(req)
	if setClause == "" {
		return r.GetByID(ctx, id)
	}

	var out model.Banner
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		args = append(args, id)
		query := "UPDATE banners SET " + setClause +
			" WHERE id = $" + strconv.Itoa(len(args)) +
			" RETURNING " + bannerColumns
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Banner])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBannerNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// buildBannerUpdateClause builds the SQL SET clause and args for an update.
func buildBannerUpdateClause(req model.UpdateBannerRequest) (string, []any) {
	setParts := make([]string, 0, 6)
	args := make([]any, 0, 6)
	nextIdx := func() int { return len(args) + 1 }

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.ImageURL != nil {
		setParts = append(setParts, fmt.Sprintf("image_url = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.ImageURL))
	}
	if req.LinkURL != nil {
		setParts = append(setParts, fmt.Sprintf("link_url = $%d", nextIdx()))
		args = append(args, *req.LinkURL)
	}
	if req.Active != nil {
		setParts = append(setParts, fmt.Sprintf("active = $%d", nextIdx()))
		args = append(args, *req.Active)
	}
	if req.Position != nil {
		setParts = append(setParts, fmt.Sprintf("position = $%d", nextIdx()))
		args = append(args, *req.Position)
	}

	if len(setParts) == 0 {
		return "", nil
	}
	setParts = append(setParts, "updated_at = now()")
	return strings.Join(setParts, ", "), args
}

// Delete deletes a banner by ID. Returns false when no row existed.
func (r *BannerRepo) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM banners WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete banner: %w", err)
	}
	return affected > 0, nil
}
