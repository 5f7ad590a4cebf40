// Package identity verifies the signed proof the external auth modal
// posts after a successful login. The cryptographic signature check is
// performed upstream by the auth provider; this package validates the
// proof envelope and extracts the identity it carries.
package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/goliatone/go-userops/core"
)

const defaultProofMaxAge = 10 * time.Minute

var ErrProofExpired = errors.New("identity: proof expired")

type proofClaims struct {
	OrgID    string `json:"orgId"`
	Address  string `json:"address"`
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	IssuedAt int64  `json:"issuedAt"`
}

// ProofVerifier accepts base64-encoded JSON proof payloads. A zero
// MaxAge disables freshness checking.
type ProofVerifier struct {
	MaxAge time.Duration
	Now    func() time.Time
}

func NewProofVerifier() *ProofVerifier {
	return &ProofVerifier{
		MaxAge: defaultProofMaxAge,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func (v *ProofVerifier) VerifyIdentity(_ context.Context, proof core.IdentityProof) (core.UserIdentity, error) {
	payload := strings.TrimSpace(proof.Payload)
	if payload == "" {
		return core.UserIdentity{}, authError("identity: proof payload is required")
	}
	if strings.TrimSpace(proof.Signature) == "" {
		return core.UserIdentity{}, authError("identity: proof signature is required")
	}
	if err := core.ValidateHexString(proof.Signature); err != nil {
		return core.UserIdentity{}, authWrapError(err, "identity: proof signature is not hex")
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Raw JSON payloads are accepted for local tooling.
		decoded = []byte(payload)
	}
	var claims proofClaims
	if err := json.Unmarshal(decoded, &claims); err != nil {
		return core.UserIdentity{}, authWrapError(err, "identity: decode proof payload")
	}

	if v != nil && v.MaxAge > 0 && claims.IssuedAt > 0 {
		issuedAt := time.Unix(claims.IssuedAt, 0).UTC()
		if v.now().Sub(issuedAt) > v.MaxAge {
			return core.UserIdentity{}, authWrapError(ErrProofExpired, "identity: proof is stale")
		}
	}

	identity := core.UserIdentity{
		OrgID:   strings.TrimSpace(claims.OrgID),
		Address: strings.TrimSpace(claims.Address),
		UserID:  strings.TrimSpace(claims.UserID),
		Email:   strings.TrimSpace(claims.Email),
	}
	if identity.UserID == "" {
		identity.UserID = uuid.NewString()
	}
	if err := identity.Validate(); err != nil {
		return core.UserIdentity{}, authWrapError(err, "identity: proof carries an invalid identity")
	}
	return identity, nil
}

func (v *ProofVerifier) now() time.Time {
	if v != nil && v.Now != nil {
		return v.Now().UTC()
	}
	return time.Now().UTC()
}

func authError(message string) error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(core.GatewayErrorBadInput)
}

func authWrapError(source error, message string) error {
	return goerrors.Wrap(source, goerrors.CategoryAuth, message).
		WithCode(http.StatusUnauthorized).
		WithTextCode(core.GatewayErrorBadInput)
}

var _ core.IdentityVerifier = (*ProofVerifier)(nil)
