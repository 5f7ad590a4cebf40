package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCredentialStatusTransition = errors.New("core: invalid credential status transition")
	ErrAPIKeyNotFound                    = errors.New("core: api key not found")
	ErrAPIKeyNotActivated                = errors.New("core: api key not activated")
	ErrUserNotFound                      = errors.New("core: user not found")
)

// UserIdentity is the record created on first successful external
// authentication. Upserts fully replace the stored identity, they never
// merge fields.
type UserIdentity struct {
	OrgID   string `json:"orgId"`
	Address string `json:"address"`
	UserID  string `json:"userId"`
	Email   string `json:"email,omitempty"`
}

func (u UserIdentity) Validate() error {
	if strings.TrimSpace(u.OrgID) == "" {
		return fmt.Errorf("core: org id is required")
	}
	if err := ValidateHexAddress(u.Address); err != nil {
		return fmt.Errorf("core: identity address: %w", err)
	}
	if strings.TrimSpace(u.UserID) == "" {
		return fmt.Errorf("core: user id is required")
	}
	return nil
}

type CredentialStatus string

const (
	CredentialStatusPending   CredentialStatus = "pending"
	CredentialStatusActivated CredentialStatus = "activated"
)

// Activation carries the artifacts produced when a credential is
// registered as a signer on a smart-contract wallet.
type Activation struct {
	DeferredActionDigest string
	AccountAddress       string
	InitCode             string
}

func (a Activation) Validate() error {
	if err := ValidateHexString(a.DeferredActionDigest); err != nil {
		return fmt.Errorf("core: deferred action digest: %w", err)
	}
	if err := ValidateHexAddress(a.AccountAddress); err != nil {
		return fmt.Errorf("core: account address: %w", err)
	}
	if err := ValidateHexString(a.InitCode); err != nil {
		return fmt.Errorf("core: init code: %w", err)
	}
	return nil
}

// Credential is a locally generated keypair registered as an authorized
// signer for a user's smart-contract wallet. The private key never
// leaves the server. Status is a tagged variant: Activation is non-nil
// exactly when Status is CredentialStatusActivated.
type Credential struct {
	PublicKey  string
	PrivateKey string
	CreatedAt  time.Time
	Status     CredentialStatus
	Activation *Activation
}

func NewPendingCredential(publicKey, privateKey string, createdAt time.Time) (Credential, error) {
	if err := ValidateHexString(publicKey); err != nil {
		return Credential{}, fmt.Errorf("core: public key: %w", err)
	}
	if err := ValidateHexString(privateKey); err != nil {
		return Credential{}, fmt.Errorf("core: private key: %w", err)
	}
	return Credential{
		PublicKey:  publicKey,
		PrivateKey: privateKey,
		CreatedAt:  createdAt.UTC(),
		Status:     CredentialStatusPending,
	}, nil
}

// Activate transitions a pending credential to activated. The transition
// is terminal: an already-activated credential cannot be re-activated and
// never reverts to pending.
func (c *Credential) Activate(activation Activation) error {
	if c == nil {
		return fmt.Errorf("core: credential is nil")
	}
	if c.Status != CredentialStatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidCredentialStatusTransition, c.Status, CredentialStatusActivated)
	}
	if err := activation.Validate(); err != nil {
		return err
	}
	c.Status = CredentialStatusActivated
	c.Activation = &activation
	return nil
}

func (c Credential) Activated() bool {
	return c.Status == CredentialStatusActivated && c.Activation != nil
}

// credentialRecord is the persisted wire shape: a boolean-gated object
// where the activation artifacts are only present when activated is true.
type credentialRecord struct {
	PublicKey            string    `json:"publicKey"`
	PrivateKey           string    `json:"privateKey"`
	CreatedAt            time.Time `json:"createdAt"`
	Activated            bool      `json:"activated"`
	DeferredActionDigest string    `json:"deferredActionDigest,omitempty"`
	AccountAddress       string    `json:"accountAddress,omitempty"`
	InitCode             string    `json:"initCode,omitempty"`
}

func (c Credential) MarshalJSON() ([]byte, error) {
	record := credentialRecord{
		PublicKey:  c.PublicKey,
		PrivateKey: c.PrivateKey,
		CreatedAt:  c.CreatedAt.UTC(),
		Activated:  c.Activated(),
	}
	if c.Activated() {
		record.DeferredActionDigest = c.Activation.DeferredActionDigest
		record.AccountAddress = c.Activation.AccountAddress
		record.InitCode = c.Activation.InitCode
	}
	return json.Marshal(record)
}

func (c *Credential) UnmarshalJSON(data []byte) error {
	record := credentialRecord{}
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("core: decode credential record: %w", err)
	}
	if err := ValidateHexString(record.PublicKey); err != nil {
		return fmt.Errorf("core: credential public key: %w", err)
	}
	if err := ValidateHexString(record.PrivateKey); err != nil {
		return fmt.Errorf("core: credential private key: %w", err)
	}
	credential := Credential{
		PublicKey:  record.PublicKey,
		PrivateKey: record.PrivateKey,
		CreatedAt:  record.CreatedAt.UTC(),
		Status:     CredentialStatusPending,
	}
	if record.Activated {
		activation := Activation{
			DeferredActionDigest: record.DeferredActionDigest,
			AccountAddress:       record.AccountAddress,
			InitCode:             record.InitCode,
		}
		if err := activation.Validate(); err != nil {
			return fmt.Errorf("core: activated credential record: %w", err)
		}
		credential.Status = CredentialStatusActivated
		credential.Activation = &activation
	}
	*c = credential
	return nil
}

// LatestCredential returns the last-appended element of an org's
// credential list. Operational callers use this and require it to be
// activated; they never fall back to an earlier activated credential.
func LatestCredential(credentials []Credential) (Credential, bool) {
	if len(credentials) == 0 {
		return Credential{}, false
	}
	return credentials[len(credentials)-1], true
}

// Operation is a request to invoke a named function with ordered
// arguments against a target contract, submitted through the
// account-abstraction wallet bound to an activated credential.
type Operation struct {
	FunctionName string
	Args         []any
	Target       string
}

func (o Operation) Validate() error {
	if strings.TrimSpace(o.FunctionName) == "" {
		return fmt.Errorf("core: operation function name is required")
	}
	if err := ValidateHexAddress(o.Target); err != nil {
		return fmt.Errorf("core: operation target: %w", err)
	}
	return nil
}

// SubmittedOperation is the opaque handle returned by a ledger execute
// or replace call, carried forward to the matching watch call.
type SubmittedOperation struct {
	ID   string
	Hash string
}

// DefaultMaxReplacements bounds how many times a stalled submission is
// replaced before the request is failed. Each replacement consumes real
// submission cost; the bound is a circuit breaker, not a best-effort
// retry budget.
const DefaultMaxReplacements = 2

type OutcomeKind string

const (
	OutcomeSuccess              OutcomeKind = "success"
	OutcomeReplacementsExceeded OutcomeKind = "replacements_exceeded"
	OutcomeFailure              OutcomeKind = "failure"
)

type FailureKind string

const (
	FailureUnexpected    FailureKind = "unexpected"
	FailureDecode        FailureKind = "decode_failure"
	FailureRevertDecoded FailureKind = "revert_decoded"
)

// OperationFailure is the decoded form of a ledger submission error:
// either a symbolic revert reason, a best-effort raw payload when
// decoding failed, or an opaque passthrough.
type OperationFailure struct {
	Kind     FailureKind
	Name     string
	Messages []string
	Raw      string
}

type OperationOutcome struct {
	Kind     OutcomeKind
	Hash     string
	Attempts int
	Failure  *OperationFailure
}

func SuccessOutcome(hash string) OperationOutcome {
	return OperationOutcome{Kind: OutcomeSuccess, Hash: hash}
}

func ReplacementsExceededOutcome(attempts int) OperationOutcome {
	return OperationOutcome{Kind: OutcomeReplacementsExceeded, Attempts: attempts}
}

func FailureOutcome(failure OperationFailure) OperationOutcome {
	return OperationOutcome{Kind: OutcomeFailure, Failure: &failure}
}
