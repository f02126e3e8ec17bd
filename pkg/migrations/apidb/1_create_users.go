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
		log.Println("creating users table...")
		if err := mghelper.CreateSchema(ctx, db, &userstore.UserDao{}); err != nil {
			return err
		}
		// Emails are stored lowercased, so a plain unique index enforces
		// case-insensitive uniqueness.
		if err := mghelper.CreateModelUniqueIndexes(ctx, db, &userstore.UserDao{}, "email"); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &userstore.UserDao{}, "wallet_address")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping users table...")
		return mghelper.DropTables(ctx, db, &userstore.UserDao{})
	})
}
