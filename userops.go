// Package userops composes the authorization gateway: external-auth
// identities, per-org credential lifecycle, and bounded ledger
// submission.
package userops

import "github.com/goliatone/go-userops/core"

type Config = core.Config

type StoreConfig = core.StoreConfig

type LedgerConfig = core.LedgerConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type UserIdentity = core.UserIdentity
type Credential = core.Credential
type CredentialStatus = core.CredentialStatus
type Activation = core.Activation
type Operation = core.Operation
type OperationOutcome = core.OperationOutcome
type OperationFailure = core.OperationFailure

type UserStore = core.UserStore
type APIKeyStore = core.APIKeyStore
type IdentityVerifier = core.IdentityVerifier
type KeyIssuer = core.KeyIssuer
type Sender = core.Sender
type SenderFactory = core.SenderFactory
type LedgerReader = core.LedgerReader
type OperationSubmitter = core.OperationSubmitter
type SubmissionThrottle = core.SubmissionThrottle

type SaveUserRequest = core.SaveUserRequest
type SaveUserResult = core.SaveUserResult
type ActivateAPIKeyInput = core.ActivateAPIKeyInput
type APIKeyStatusResult = core.APIKeyStatusResult
type SubmitOperationRequest = core.SubmitOperationRequest
type RegisterPeerRequest = core.RegisterPeerRequest
type SubmitRewardRequest = core.SubmitRewardRequest
type SubmitWinnerRequest = core.SubmitWinnerRequest
type GuessAnswerRequest = core.GuessAnswerRequest
type ClaimRewardRequest = core.ClaimRewardRequest
type BetTokenBalanceRequest = core.BetTokenBalanceRequest
type BetTokenBalanceResult = core.BetTokenBalanceResult

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorFactory       = core.WithErrorFactory
	WithErrorMapper        = core.WithErrorMapper
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithPersistenceClient  = core.WithPersistenceClient
	WithRepositoryFactory  = core.WithRepositoryFactory
	WithUserStore          = core.WithUserStore
	WithAPIKeyStore        = core.WithAPIKeyStore
	WithIdentityVerifier   = core.WithIdentityVerifier
	WithKeyIssuer          = core.WithKeyIssuer
	WithSenderFactory      = core.WithSenderFactory
	WithLedgerReader       = core.WithLedgerReader
	WithOperationSubmitter = core.WithOperationSubmitter
	WithSubmissionThrottle = core.WithSubmissionThrottle
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
