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

// ErrAnimalNotFound is returned when an animal is not found.
var ErrAnimalNotFound = errors.New("animal not found")

// AnimalRepo provides database operations for animal profiles.
type AnimalRepo struct {
	DB *sql.DB
}

// NewAnimalRepo creates a new AnimalRepo.
func NewAnimalRepo(db *sql.DB) *AnimalRepo {
	return &AnimalRepo{DB: db}
}

const animalColumns = "id, name, species, status, description, photo_url, created_at, updated_at"

const (
	sortDirAsc  = "ASC"
	sortDirDesc = "DESC"
)

// Create inserts a new animal profile.
func (r *AnimalRepo) Create(ctx context.Context, req *model.CreateAnimalRequest) (*model.Animal, error) {
	if req == nil {
		return nil, errors.New("create animal request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.AnimalStatusAvailable
	}

	var out model.Animal
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO animals (name, species, status, description, photo_url)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+animalColumns,
			strings.TrimSpace(req.Name),
			strings.TrimSpace(req.Species),
			status,
			req.Description,
			req.PhotoURL,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Animal])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves an animal by ID.
func (r *AnimalRepo) GetByID(ctx context.Context, id string) (*model.Animal, error) {
	var out model.Animal
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+animalColumns+` FROM animals WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Animal])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnimalNotFound
		}
		return nil, fmt.Errorf("get animal by ID: %w", err)
	}
	return &out, nil
}

// List retrieves animals with pass-through filters and sorting.
func (r *AnimalRepo) List(ctx context.Context, opts model.AnimalsListOptions) ([]*model.Animal, error) {
	query, args := buildAnimalsListQuery(opts)

	var rowsOut []model.Animal
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Animal])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list animals: %w", err)
	}

	res := make([]*model.Animal, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// buildAnimalsListQuery builds the list query from options. Filter values are
// always passed as placeholders; only validated column/direction names are
// interpolated.
func buildAnimalsListQuery(opts model.AnimalsListOptions) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + animalColumns + ` FROM animals`)

	args := make([]any, 0, 4)
	conds := make([]string, 0, 2)
	if opts.Species != nil && strings.TrimSpace(*opts.Species) != "" {
		args = append(args, strings.TrimSpace(*opts.Species))
		conds = append(conds, "species = $"+strconv.Itoa(len(args)))
	}
	if opts.Status != nil && *opts.Status != "" {
		args = append(args, *opts.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	sortCol, sortDir := validateAnimalSort(opts.Sort, opts.Dir)
	sb.WriteString(" ORDER BY " + sortCol + " " + sortDir)

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)
	args = append(args, limit)
	sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	args = append(args, offset)
	sb.WriteString(" OFFSET $" + strconv.Itoa(len(args)))

	return sb.String(), args
}

// validateAnimalSort validates and returns safe sort column and direction.
func validateAnimalSort(sort, dir string) (string, string) {
	sortCol := "created_at"
	sortDir := sortDirDesc

	allowedSorts := map[string]string{
		"name":       "name",
		"species":    "species",
		"status":     "status",
		"created_at": "created_at",
	}
	if col, ok := allowedSorts[strings.ToLower(strings.TrimSpace(sort))]; ok {
		sortCol = col
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "asc":
		sortDir = sortDirAsc
	case "desc":
		sortDir = sortDirDesc
	}
	return sortCol, sortDir
}

// Update updates fields of an animal profile.
func (r *AnimalRepo) Update(ctx context.Context, id string, req model.UpdateAnimalRequest) (*model.Animal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setClause, args := buildAnimalUpdateClause(req)
	if setClause == "" {
		return r.GetByID(ctx, id)
	}

	var out model.Animal
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		args = append(args, id)
		query := "UPDATE animals SET " + setClause +
			" WHERE id = $" + strconv.Itoa(len(args)) +
			" RETURNING " + animalColumns
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Animal])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnimalNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// buildAnimalUpdateClause builds the SQL SET clause and args for an update.
func buildAnimalUpdateClause(req model.UpdateAnimalRequest) (string, []any) {
	setParts := make([]string, 0, 6)
	args := make([]any, 0, 6)
	nextIdx := func() int { return len(args) + 1 }

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Name))
	}
	if req.Species != nil {
		setParts = append(setParts, fmt.Sprintf("species = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Species))
	}
	if req.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", nextIdx()))
		args = append(args, *req.Status)
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", nextIdx()))
		args = append(args, *req.Description)
	}
	if req.PhotoURL != nil {
		setParts = append(setParts, fmt.Sprintf("photo_url = $%d", nextIdx()))
		args = append(args, *req.PhotoURL)
	}

	if len(setParts) == 0 {
		return "", nil
	}
	setParts = append(setParts, "updated_at = now()")
	return strings.Join(setParts, ", "), args
}

// Delete deletes an animal by ID. Returns false when no row existed.
func (r *AnimalRepo) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM animals WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete animal: %w", err)
	}
	return affected > 0, nil
}
