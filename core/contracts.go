package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

// UserStore persists external-auth identities. Upserts fully replace
// the stored collection with the just-upserted org; all other orgs are
// purged (single-tenant file invariant).
type UserStore interface {
	UpsertUser(ctx context.Context, identity UserIdentity, credential Credential) error
	GetUser(ctx context.Context, orgID string) (*UserIdentity, error)
}

// APIKeyStore owns the per-org append-only credential lists. The latest
// credential for an org is the last-appended element.
type APIKeyStore interface {
	GetLatestAPIKey(ctx context.Context, orgID string) (*Credential, error)
	SetAPIKeyActivated(ctx context.Context, in ActivateAPIKeyInput) error
}

type StoreProvider interface {
	UserStore() UserStore
	APIKeyStore() APIKeyStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type ActivateAPIKeyInput struct {
	OrgID                string
	PublicKey            string
	DeferredActionDigest string
	AccountAddress       string
	InitCode             string
}

func (in ActivateAPIKeyInput) Validate() error {
	if err := requireField("org id", in.OrgID); err != nil {
		return err
	}
	if err := ValidateHexString(in.PublicKey); err != nil {
		return err
	}
	return Activation{
		DeferredActionDigest: in.DeferredActionDigest,
		AccountAddress:       in.AccountAddress,
		InitCode:             in.InitCode,
	}.Validate()
}

// IdentityProof is the signed proof produced by the external auth modal;
// verification itself is owned by the collaborator behind IdentityVerifier.
type IdentityProof struct {
	Payload   string
	Signature string
}

type IdentityVerifier interface {
	VerifyIdentity(ctx context.Context, proof IdentityProof) (UserIdentity, error)
}

// KeyIssuer generates a fresh keypair for a new credential. The
// cryptographic internals live in the wallet SDK, outside this module.
type KeyIssuer interface {
	IssueKeypair(ctx context.Context) (publicKey string, privateKey string, err error)
}

// Sender is the injected capability triple for one logical ledger
// submission. Execute submits, Watch suspends until the submission is
// observed confirmed, Replace re-submits with bumped parameters in the
// same sequencing slot.
type Sender interface {
	Execute(ctx context.Context) (SubmittedOperation, error)
	Watch(ctx context.Context, submitted SubmittedOperation) (string, error)
	Replace(ctx context.Context, submitted SubmittedOperation) (SubmittedOperation, error)
}

// SenderFactory binds an operation to an activated credential, producing
// the capability triple the submitter drives.
type SenderFactory interface {
	Sender(ctx context.Context, credential Credential, operation Operation) (Sender, error)
}

// LedgerReader answers read-only ledger lookups under an activated
// credential. Reads bypass the submission protocol entirely.
type LedgerReader interface {
	BetTokenBalance(ctx context.Context, credential Credential, peerID string) (int64, error)
}

// OperationSubmitter drives a Sender through the bounded
// execute/watch/replace protocol and reports a typed outcome. It never
// returns both a zero outcome and a nil error.
type OperationSubmitter interface {
	Submit(ctx context.Context, sender Sender) (OperationOutcome, error)
}

// SubmissionThrottle caps per-org submission rates; every replacement
// consumes real submission cost.
type SubmissionThrottle interface {
	Allow(ctx context.Context, orgID string) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
