package model

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
)

func CreateSchema(ctx context.Context, db bun.IDB) error {
	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.
			NewCreateTable().
			Model((*PremiumCode)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.
			NewCreateTable().
			Model((*GuildConfig)(nil)).
			IfNotExists().
			ForeignKey(`("premium_code_id") REFERENCES "realmpremiumcode" ("id") ON DELETE SET NULL`).
			Exec(ctx); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return fmt.Errorf("CreateSchema: %w", err)
	}

	return nil
}
