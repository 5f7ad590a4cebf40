package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-userops/core"
	"github.com/uptrace/bun"
)

type UserStore struct {
	db         *bun.DB
	userRepo   repository.Repository[*userRecord]
	apiKeyRepo repository.Repository[*apiKeyRecord]
}

// UpsertUser runs both sides of the write in one transaction: the user
// table is cleared down to the upserted org, and the credential is
// appended to the org's key list at the next position. The purge of
// every other org mirrors the single-tenant file layout this store is a
// drop-in replacement for.
func (s *UserStore) UpsertUser(ctx context.Context, identity core.UserIdentity, credential core.Credential) error {
	if s == nil || s.db == nil || s.userRepo == nil || s.apiKeyRepo == nil {
		return fmt.Errorf("sqlstore: user store is not configured")
	}
	if err := identity.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*userRecord)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return fmt.Errorf("sqlstore: purge users: %w", err)
		}

		if _, err := s.userRepo.CreateTx(ctx, tx, newUserRecord(identity, now)); err != nil {
			return fmt.Errorf("sqlstore: insert user: %w", err)
		}

		position, err := nextPosition(ctx, tx, identity.OrgID)
		if err != nil {
			return err
		}
		if _, err := s.apiKeyRepo.CreateTx(ctx, tx, newAPIKeyRecord(identity.OrgID, credential, position, now)); err != nil {
			return fmt.Errorf("sqlstore: insert api key: %w", err)
		}
		return nil
	})
}

func (s *UserStore) GetUser(ctx context.Context, orgID string) (*core.UserIdentity, error) {
	if s == nil || s.userRepo == nil {
		return nil, fmt.Errorf("sqlstore: user store is not configured")
	}
	records, _, err := s.userRepo.List(ctx,
		repository.SelectBy("org_id", "=", strings.TrimSpace(orgID)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	identity := records[0].toDomain()
	return &identity, nil
}

func nextPosition(ctx context.Context, tx bun.Tx, orgID string) (int, error) {
	var maxPosition int
	if err := tx.NewSelect().
		Model((*apiKeyRecord)(nil)).
		ColumnExpr("COALESCE(MAX(position), 0)").
		Where("?TableAlias.org_id = ?", orgID).
		Scan(ctx, &maxPosition); err != nil {
		return 0, fmt.Errorf("sqlstore: next api key position: %w", err)
	}
	return maxPosition + 1, nil
}
