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
		log.Println("creating credentials table...")
		return mghelper.CreateSchema(ctx, db, &userstore.CredentialDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping credentials table...")
		return mghelper.DropTables(ctx, db, &userstore.CredentialDao{})
	})
}
