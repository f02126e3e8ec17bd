package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/carbonquest/carbonquest/pkg/pgutil/migrations"
	"github.com/carbonquest/carbonquest/pkg/userstore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating sessions table...")
		if err := mghelper.CreateSchema(ctx, db, &userstore.SessionDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &userstore.SessionDao{}, "user_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping sessions table...")
		return mghelper.DropTables(ctx, db, &userstore.SessionDao{})
	})
}
