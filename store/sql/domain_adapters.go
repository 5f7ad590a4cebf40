package sqlstore

import (
	"fmt"
	"time"

	"github.com/goliatone/go-userops/core"
)

func newAPIKeyRecord(orgID string, credential core.Credential, position int, now time.Time) *apiKeyRecord {
	record := &apiKeyRecord{
		OrgID:      orgID,
		Position:   position,
		PublicKey:  credential.PublicKey,
		PrivateKey: credential.PrivateKey,
		Status:     string(credential.Status),
		CreatedAt:  credential.CreatedAt,
		UpdatedAt:  now,
	}
	if credential.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if credential.Activation != nil {
		record.DeferredActionDigest = credential.Activation.DeferredActionDigest
		record.AccountAddress = credential.Activation.AccountAddress
		record.InitCode = credential.Activation.InitCode
	}
	return record
}

func newUserRecord(identity core.UserIdentity, now time.Time) *userRecord {
	return &userRecord{
		OrgID:     identity.OrgID,
		Address:   identity.Address,
		UserID:    identity.UserID,
		Email:     identity.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *userRecord) toDomain() core.UserIdentity {
	if r == nil {
		return core.UserIdentity{}
	}
	return core.UserIdentity{
		OrgID:   r.OrgID,
		Address: r.Address,
		UserID:  r.UserID,
		Email:   r.Email,
	}
}

func (r *apiKeyRecord) toDomain() (core.Credential, error) {
	if r == nil {
		return core.Credential{}, fmt.Errorf("sqlstore: api key record is nil")
	}
	credential := core.Credential{
		PublicKey:  r.PublicKey,
		PrivateKey: r.PrivateKey,
		CreatedAt:  r.CreatedAt,
		Status:     core.CredentialStatus(r.Status),
	}
	if credential.Status == core.CredentialStatusActivated {
		credential.Activation = &core.Activation{
			DeferredActionDigest: r.DeferredActionDigest,
			AccountAddress:       r.AccountAddress,
			InitCode:             r.InitCode,
		}
	}
	return credential, nil
}
