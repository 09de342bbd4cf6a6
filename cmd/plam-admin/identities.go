package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/bootstrap"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/data"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/auth"
	"github.com/GustavoEraso/por-los-animales-maldonado-sub001/internal/domain/model"
)

func connectDB(ctx *commandContext) (*sql.DB, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: ctx.Config.Postgres,
		Logger:   ctx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return db, nil
}

func closeDB(ctx *commandContext, db *sql.DB) {
	if err := db.Close(); err != nil {
		ctx.Logger.ErrorContext(ctx.Ctx, "close database failed", "error", err)
	}
}

func runMigrate(ctx *commandContext, _ []string) error {
	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(ctx, db)

	return bootstrap.RunMigrations(ctx.Ctx, db, ctx.Logger)
}

func runAllow(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("allow", flag.ContinueOnError)
	email := fs.String("email", "", "email of the identity (required)")
	name := fs.String("name", "", "display name (required)")
	role := fs.String("role", string(auth.RoleUser), "role: user, rescuer, admin, or superadmin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := &model.UpsertIdentityRequest{
		Email: *email,
		Name:  *name,
		Role:  auth.Role(*role),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(ctx, db)

	row, err := data.NewAuthorizedIdentityRepo(db).Upsert(ctx.Ctx, req)
	if err != nil {
		return fmt.Errorf("upsert identity: %w", err)
	}

	ctx.Logger.InfoContext(ctx.Ctx, "allow-list entry saved",
		"email", row.Email, "role", row.Role)
	return nil
}

func runRevoke(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("revoke", flag.ContinueOnError)
	email := fs.String("email", "", "email of the identity (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(ctx, db)

	removed, err := data.NewAuthorizedIdentityRepo(db).Delete(ctx.Ctx, *email)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	if !removed {
		return fmt.Errorf("no allow-list entry for %q", *email)
	}

	ctx.Logger.InfoContext(ctx.Ctx, "allow-list entry removed", "email", *email)
	return nil
}

func runList(ctx *commandContext, _ []string) error {
	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(ctx, db)

	rows, err := data.NewAuthorizedIdentityRepo(db).List(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("list identities: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "EMAIL\tNAME\tROLE\tUPDATED\n"); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writef(w, "%s\t%s\t%s\t%s\n",
			row.Email, row.Name, row.Role, row.UpdatedAt.Format("2006-01-02 15:04:05")); err != nil {
			return err
		}
	}
	return w.Flush()
}
