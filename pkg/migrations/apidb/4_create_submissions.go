package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/carbonquest/carbonquest/pkg/pgutil/migrations"
	"github.com/carbonquest/carbonquest/pkg/submissionstore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating submissions table...")
		if err := mghelper.CreateSchema(ctx, db, &submissionstore.SubmissionDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &submissionstore.SubmissionDao{},
			"wallet_address", "user_id", "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping submissions table...")
		return mghelper.DropTables(ctx, db, &submissionstore.SubmissionDao{})
	})
}
