package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-userops/core"
	"github.com/uptrace/bun"
)

type APIKeyStore struct {
	db   *bun.DB
	repo repository.Repository[*apiKeyRecord]
}

// GetLatestAPIKey returns the last-appended credential for an org, the
// row with the highest position. It returns nil when the org has none.
func (s *APIKeyStore) GetLatestAPIKey(ctx context.Context, orgID string) (*core.Credential, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: api key store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("org_id", "=", strings.TrimSpace(orgID)),
		repository.OrderBy("position DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	credential, err := records[0].toDomain()
	if err != nil {
		return nil, err
	}
	return &credential, nil
}

// SetAPIKeyActivated transitions the org's credential with the exact
// public key from pending to activated, storing the activation
// artifacts on the same row. Rows for other keys and other orgs are
// never touched.
func (s *APIKeyStore) SetAPIKeyActivated(ctx context.Context, in core.ActivateAPIKeyInput) error {
	if s == nil || s.db == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: api key store is not configured")
	}
	if err := in.Validate(); err != nil {
		return err
	}
	orgID := strings.TrimSpace(in.OrgID)

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record := &apiKeyRecord{}
		err := tx.NewSelect().
			Model(record).
			Where("?TableAlias.org_id = ?", orgID).
			Where("?TableAlias.public_key = ?", in.PublicKey).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: org %q key %s", core.ErrAPIKeyNotFound, orgID, in.PublicKey)
		}
		if err != nil {
			return fmt.Errorf("sqlstore: load api key: %w", err)
		}

		credential, err := record.toDomain()
		if err != nil {
			return err
		}
		if err := credential.Activate(core.Activation{
			DeferredActionDigest: in.DeferredActionDigest,
			AccountAddress:       in.AccountAddress,
			InitCode:             in.InitCode,
		}); err != nil {
			return err
		}

		_, err = tx.NewUpdate().
			Model((*apiKeyRecord)(nil)).
			Set("status = ?", string(credential.Status)).
			Set("deferred_action_digest = ?", credential.Activation.DeferredActionDigest).
			Set("account_address = ?", credential.Activation.AccountAddress).
			Set("init_code = ?", credential.Activation.InitCode).
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", record.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("sqlstore: activate api key: %w", err)
		}
		return nil
	})
}
