package model

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// A code granting premium features to the guilds it is attached to.
//
// Codes with a CustomerID are managed by the payment provider and are never
// removed automatically.
type PremiumCode struct {
	bun.BaseModel `bun:"table:realmpremiumcode"`

	ID         int64     `bun:"id,pk,autoincrement"`
	Code       string    `bun:"code,notnull,type:varchar(100)"`
	UserID     string    `bun:"user_id,nullzero"`
	Uses       int       `bun:"uses,notnull,default:0"`
	MaxUses    int       `bun:"max_uses,notnull,default:1"`
	CustomerID string    `bun:"customer_id,nullzero"`
	ExpiresAt  time.Time `bun:"expires_at,nullzero"`

	Guilds []*GuildConfig `bun:"rel:has-many,join:id=premium_code_id"`
}

func (c *PremiumCode) IsExternallyManaged() bool {
	return c.CustomerID != ""
}

// IsActive reports whether the code is held by someone and hasn't expired.
func (c *PremiumCode) IsActive(now time.Time) bool {
	if c.UserID == "" {
		return false
	}
	return c.ExpiresAt.IsZero() || c.ExpiresAt.After(now)
}

// Delete soft-clears every guild config backed by this code, then removes
// the code row. Both steps run in one transaction.
func (c *PremiumCode) Delete(ctx context.Context, db bun.IDB) error {
	if c.ID == 0 {
		return fmt.Errorf("(*PremiumCode).Delete: id is required")
	}

	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := ClearGuildConfigsOfCode(ctx, tx, c.ID); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*PremiumCode)(nil)).
			Where("id = ?", c.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("can't delete premium code: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("(*PremiumCode).Delete: %w", err)
	}

	return nil
}

// PremiumCodesOfUser returns the codes owned by userID. With
// externallyManaged set, only codes with (true) or without (false) a
// customer id are returned.
func PremiumCodesOfUser(ctx context.Context, db bun.IDB, userID string, externallyManaged *bool) ([]*PremiumCode, error) {
	codes := make([]*PremiumCode, 0)
	query := db.NewSelect().
		Model(&codes).
		Where("user_id = ?", userID)
	if externallyManaged != nil {
		switch *externallyManaged {
		case true:
			query = query.Where("customer_id IS NOT NULL")
		case false:
			query = query.Where("customer_id IS NULL")
		}
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("PremiumCodesOfUser: %w", err)
	}
	return codes, nil
}

// HasPremiumCode reports whether userID owns any code at all.
func HasPremiumCode(ctx context.Context, db bun.IDB, userID string) (bool, error) {
	exists, err := db.NewSelect().
		Model((*PremiumCode)(nil)).
		Where("user_id = ?", userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("HasPremiumCode: %w", err)
	}
	return exists, nil
}

// HasExternalPremiumCode reports whether userID owns a code that has a
// customer id.
func HasExternalPremiumCode(ctx context.Context, db bun.IDB, userID string) (bool, error) {
	exists, err := db.NewSelect().
		Model((*PremiumCode)(nil)).
		Where("user_id = ?", userID).
		Where("customer_id IS NOT NULL").
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("HasExternalPremiumCode: %w", err)
	}
	return exists, nil
}

// ActivePremiumUserIDs returns the set of users holding at least one
// unexpired code.
func ActivePremiumUserIDs(ctx context.Context, db bun.IDB, now time.Time) (map[string]struct{}, error) {
	var userIDs []string
	if err := db.NewSelect().
		Model((*PremiumCode)(nil)).
		Column("user_id").
		Where("user_id IS NOT NULL").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("expires_at IS NULL").
				WhereOr("expires_at > ?", now.UTC())
		}).
		Scan(ctx, &userIDs); err != nil {
		return nil, fmt.Errorf("ActivePremiumUserIDs: %w", err)
	}

	set := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		set[id] = struct{}{}
	}
	return set, nil
}

// PremiumCodesNotHeldBy returns the codes that have an owner outside
// userIDs and no customer id, i.e. the ones that may be removed.
func PremiumCodesNotHeldBy(ctx context.Context, db bun.IDB, userIDs []string) ([]*PremiumCode, error) {
	codes := make([]*PremiumCode, 0)
	query := db.NewSelect().
		Model(&codes).
		Where("user_id IS NOT NULL").
		Where("customer_id IS NULL")
	if len(userIDs) > 0 {
		query = query.Where("user_id NOT IN (?)", bun.In(userIDs))
	}
	if err := query.Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("PremiumCodesNotHeldBy: %w", err)
	}
	return codes, nil
}

func (c *PremiumCode) Insert(ctx context.Context, db bun.IDB) error {
	if c.Code == "" {
		return fmt.Errorf("(*PremiumCode).Insert: code is required")
	}
	if c.MaxUses == 0 {
		c.MaxUses = 1
	}
	if _, err := db.NewInsert().
		Model(c).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*PremiumCode).Insert: %w", err)
	}
	return nil
}
