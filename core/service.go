package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	FunctionRegisterPeer = "registerPeer"
	FunctionSubmitReward = "submitReward"
	FunctionSubmitWinner = "submitWinner"
	FunctionGuessAnswer  = "guessAnswer"
	FunctionClaimReward  = "claimReward"
)

type Service struct {
	config             Config
	logger             Logger
	loggerProvider     LoggerProvider
	metricsRecorder    MetricsRecorder
	errorFactory       ErrorFactory
	errorMapper        ErrorMapper
	configProvider     ConfigProvider
	optionsResolver    OptionsResolver
	persistenceClient  any
	repositoryFactory  any
	userStore          UserStore
	apiKeyStore        APIKeyStore
	identityVerifier   IdentityVerifier
	keyIssuer          KeyIssuer
	senderFactory      SenderFactory
	ledgerReader       LedgerReader
	submitter          OperationSubmitter
	submissionThrottle SubmissionThrottle
}

type ServiceDependencies struct {
	Logger             Logger
	LoggerProvider     LoggerProvider
	MetricsRecorder    MetricsRecorder
	ErrorFactory       ErrorFactory
	ErrorMapper        ErrorMapper
	ConfigProvider     ConfigProvider
	OptionsResolver    OptionsResolver
	UserStore          UserStore
	APIKeyStore        APIKeyStore
	IdentityVerifier   IdentityVerifier
	KeyIssuer          KeyIssuer
	SenderFactory      SenderFactory
	LedgerReader       LedgerReader
	Submitter          OperationSubmitter
	SubmissionThrottle SubmissionThrottle
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("userops", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("userops"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if (builder.userStore == nil || builder.apiKeyStore == nil) && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			storeProvider, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if storeProvider != nil {
				if builder.userStore == nil {
					builder.userStore = storeProvider.UserStore()
				}
				if builder.apiKeyStore == nil {
					builder.apiKeyStore = storeProvider.APIKeyStore()
				}
			}
		} else if storeProvider, ok := builder.repositoryFactory.(StoreProvider); ok {
			if builder.userStore == nil {
				builder.userStore = storeProvider.UserStore()
			}
			if builder.apiKeyStore == nil {
				builder.apiKeyStore = storeProvider.APIKeyStore()
			}
		}
	}

	return &Service{
		config:             finalConfig,
		logger:             logger,
		loggerProvider:     provider,
		metricsRecorder:    builder.metricsRecorder,
		errorFactory:       builder.errorFactory,
		errorMapper:        builder.errorMapper,
		configProvider:     builder.configProvider,
		optionsResolver:    builder.optionsResolver,
		persistenceClient:  builder.persistenceClient,
		repositoryFactory:  builder.repositoryFactory,
		userStore:          builder.userStore,
		apiKeyStore:        builder.apiKeyStore,
		identityVerifier:   builder.identityVerifier,
		keyIssuer:          builder.keyIssuer,
		senderFactory:      builder.senderFactory,
		ledgerReader:       builder.ledgerReader,
		submitter:          builder.submitter,
		submissionThrottle: builder.submissionThrottle,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:             s.logger,
		LoggerProvider:     s.loggerProvider,
		MetricsRecorder:    s.metricsRecorder,
		ErrorFactory:       s.errorFactory,
		ErrorMapper:        s.errorMapper,
		ConfigProvider:     s.configProvider,
		OptionsResolver:    s.optionsResolver,
		UserStore:          s.userStore,
		APIKeyStore:        s.apiKeyStore,
		IdentityVerifier:   s.identityVerifier,
		KeyIssuer:          s.keyIssuer,
		SenderFactory:      s.senderFactory,
		LedgerReader:       s.ledgerReader,
		Submitter:          s.submitter,
		SubmissionThrottle: s.submissionThrottle,
	}
}

type SaveUserRequest struct {
	Proof IdentityProof
}

type SaveUserResult struct {
	Identity  UserIdentity
	PublicKey string
}

// SaveUser verifies the signed proof from the auth modal, issues a fresh
// pending credential, and replaces the persisted identity for the org.
func (s *Service) SaveUser(ctx context.Context, req SaveUserRequest) (result SaveUserResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "save_user", err, fields)
	}()

	if s == nil || s.userStore == nil {
		return SaveUserResult{}, s.mapError(fmt.Errorf("core: user store is required"))
	}
	if s.identityVerifier == nil {
		return SaveUserResult{}, s.mapError(fmt.Errorf("core: identity verifier is required"))
	}
	if s.keyIssuer == nil {
		return SaveUserResult{}, s.mapError(fmt.Errorf("core: key issuer is required"))
	}
	if strings.TrimSpace(req.Proof.Payload) == "" {
		return SaveUserResult{}, s.mapError(fmt.Errorf("core: identity proof payload is required"))
	}

	identity, err := s.identityVerifier.VerifyIdentity(ctx, req.Proof)
	if err != nil {
		err = s.mapError(err)
		return SaveUserResult{}, err
	}
	fields["org_id"] = identity.OrgID
	if err = identity.Validate(); err != nil {
		err = s.mapError(err)
		return SaveUserResult{}, err
	}

	publicKey, privateKey, err := s.keyIssuer.IssueKeypair(ctx)
	if err != nil {
		err = s.mapError(err)
		return SaveUserResult{}, err
	}
	credential, err := NewPendingCredential(publicKey, privateKey, time.Now().UTC())
	if err != nil {
		err = s.mapError(err)
		return SaveUserResult{}, err
	}

	if err = s.userStore.UpsertUser(ctx, identity, credential); err != nil {
		err = s.mapError(err)
		return SaveUserResult{}, err
	}
	return SaveUserResult{Identity: identity, PublicKey: credential.PublicKey}, nil
}

func (s *Service) GetUser(ctx context.Context, orgID string) (UserIdentity, error) {
	if s == nil || s.userStore == nil {
		return UserIdentity{}, s.mapError(fmt.Errorf("core: user store is required"))
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return UserIdentity{}, s.mapError(fmt.Errorf("core: org id is required"))
	}
	identity, err := s.userStore.GetUser(ctx, orgID)
	if err != nil {
		return UserIdentity{}, s.mapError(err)
	}
	if identity == nil {
		return UserIdentity{}, s.mapError(fmt.Errorf("%w: org %q", ErrUserNotFound, orgID))
	}
	return *identity, nil
}

type APIKeyStatusResult struct {
	OrgID     string
	PublicKey string
	Status    CredentialStatus
}

// APIKeyStatus reports the activation state of the org's latest
// credential. Earlier credentials are never consulted.
func (s *Service) APIKeyStatus(ctx context.Context, orgID string) (APIKeyStatusResult, error) {
	if s == nil || s.apiKeyStore == nil {
		return APIKeyStatusResult{}, s.mapError(fmt.Errorf("core: api key store is required"))
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return APIKeyStatusResult{}, s.mapError(fmt.Errorf("core: org id is required"))
	}
	credential, err := s.apiKeyStore.GetLatestAPIKey(ctx, orgID)
	if err != nil {
		return APIKeyStatusResult{}, s.mapError(err)
	}
	if credential == nil {
		return APIKeyStatusResult{}, s.mapError(fmt.Errorf("%w: org %q", ErrAPIKeyNotFound, orgID))
	}
	return APIKeyStatusResult{
		OrgID:     orgID,
		PublicKey: credential.PublicKey,
		Status:    credential.Status,
	}, nil
}

// ActivateAPIKey records the off-band wallet registration artifacts for
// the credential matching the supplied public key.
func (s *Service) ActivateAPIKey(ctx context.Context, in ActivateAPIKeyInput) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"org_id": in.OrgID}
	defer func() {
		s.observeOperation(ctx, startedAt, "activate_api_key", err, fields)
	}()

	if s == nil || s.apiKeyStore == nil {
		return s.mapError(fmt.Errorf("core: api key store is required"))
	}
	if err = in.Validate(); err != nil {
		err = s.mapError(err)
		return err
	}
	if err = s.apiKeyStore.SetAPIKeyActivated(ctx, in); err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

type SubmitOperationRequest struct {
	OrgID     string
	Operation Operation
}

// SubmitOperation resolves the org's latest activated credential, binds
// the operation to it, and drives the bounded execute/watch/replace
// protocol. Ledger failures surface as typed outcomes, not errors; the
// returned error covers request-level failures only (unknown org,
// inactive key, throttling, bad input).
func (s *Service) SubmitOperation(ctx context.Context, req SubmitOperationRequest) (outcome OperationOutcome, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"org_id":   req.OrgID,
		"function": req.Operation.FunctionName,
	}
	defer func() {
		if outcome.Kind != "" {
			fields["outcome"] = string(outcome.Kind)
		}
		s.observeOperation(ctx, startedAt, "submit_operation", err, fields)
	}()

	if s == nil || s.apiKeyStore == nil {
		return OperationOutcome{}, s.mapError(fmt.Errorf("core: api key store is required"))
	}
	if s.senderFactory == nil {
		return OperationOutcome{}, s.mapError(fmt.Errorf("core: sender factory is required"))
	}
	if s.submitter == nil {
		return OperationOutcome{}, s.mapError(fmt.Errorf("core: operation submitter is required"))
	}
	orgID := strings.TrimSpace(req.OrgID)
	if orgID == "" {
		return OperationOutcome{}, s.mapError(fmt.Errorf("core: org id is required"))
	}
	if err = req.Operation.Validate(); err != nil {
		err = s.mapError(err)
		return OperationOutcome{}, err
	}

	if s.submissionThrottle != nil {
		if err = s.submissionThrottle.Allow(ctx, orgID); err != nil {
			err = s.mapError(err)
			return OperationOutcome{}, err
		}
	}

	credential, err := s.resolveActivatedCredential(ctx, orgID)
	if err != nil {
		return OperationOutcome{}, err
	}

	sender, err := s.senderFactory.Sender(ctx, credential, req.Operation)
	if err != nil {
		err = s.mapError(err)
		return OperationOutcome{}, err
	}

	outcome, err = s.submitter.Submit(ctx, sender)
	if err != nil {
		err = s.mapError(err)
		return OperationOutcome{}, err
	}
	return outcome, nil
}

type RegisterPeerRequest struct {
	OrgID  string
	PeerID string
}

func (s *Service) RegisterPeer(ctx context.Context, req RegisterPeerRequest) (OperationOutcome, error) {
	if err := requireField("peer id", req.PeerID); err != nil {
		return OperationOutcome{}, s.mapError(err)
	}
	return s.SubmitOperation(ctx, SubmitOperationRequest{
		OrgID: req.OrgID,
		Operation: Operation{
			FunctionName: FunctionRegisterPeer,
			Args:         []any{req.PeerID},
			Target:       s.contractAddress(),
		},
	})
}

type SubmitRewardRequest struct {
	OrgID       string
	RoundNumber int64
	StageNumber int64
	Reward      int64
	PeerID      string
}

func (s *Service) SubmitReward(ctx context.Context, req SubmitRewardRequest) (OperationOutcome, error) {
	if err := requireField("peer id", req.PeerID); err != nil {
		return OperationOutcome{}, s.mapError(err)
	}
	return s.SubmitOperation(ctx, SubmitOperationRequest{
		OrgID: req.OrgID,
		Operation: Operation{
			FunctionName: FunctionSubmitReward,
			Args:         []any{req.RoundNumber, req.StageNumber, req.Reward, req.PeerID},
			Target:       s.contractAddress(),
		},
	})
}

type SubmitWinnerRequest struct {
	OrgID       string
	RoundNumber int64
	Winners     []string
	PeerID      string
}

func (s *Service) SubmitWinner(ctx context.Context, req SubmitWinnerRequest) (OperationOutcome, error) {
	if err := requireField("peer id", req.PeerID); err != nil {
		return OperationOutcome{}, s.mapError(err)
	}
	if len(req.Winners) == 0 {
		return OperationOutcome{}, s.mapError(fmt.Errorf("core: winners are required"))
	}
	return s.SubmitOperation(ctx, SubmitOperationRequest{
		OrgID: req.OrgID,
		Operation: Operation{
			FunctionName: FunctionSubmitWinner,
			Args:         []any{req.RoundNumber, req.Winners, req.PeerID},
			Target:       s.contractAddress(),
		},
	})
}

type GuessAnswerRequest struct {
	OrgID     string
	GameID    int64
	PeerID    string
	ClueID    int64
	ChoiceIdx int64
	Bet       int64
}

// GuessAnswer places a bet on a clue choice in the prediction game.
func (s *Service) GuessAnswer(ctx context.Context, req GuessAnswerRequest) (OperationOutcome, error) {
	if err := requireField("peer id", req.PeerID); err != nil {
		return OperationOutcome{}, s.mapError(err)
	}
	if req.Bet < 0 {
		return OperationOutcome{}, s.mapError(fmt.Errorf("core: bet must not be negative"))
	}
	return s.SubmitOperation(ctx, SubmitOperationRequest{
		OrgID: req.OrgID,
		Operation: Operation{
			FunctionName: FunctionGuessAnswer,
			Args:         []any{req.GameID, req.PeerID, req.ClueID, req.ChoiceIdx, req.Bet},
			Target:       s.contractAddress(),
		},
	})
}

type ClaimRewardRequest struct {
	OrgID  string
	GameID int64
	PeerID string
}

func (s *Service) ClaimReward(ctx context.Context, req ClaimRewardRequest) (OperationOutcome, error) {
	if err := requireField("peer id", req.PeerID); err != nil {
		return OperationOutcome{}, s.mapError(err)
	}
	return s.SubmitOperation(ctx, SubmitOperationRequest{
		OrgID: req.OrgID,
		Operation: Operation{
			FunctionName: FunctionClaimReward,
			Args:         []any{req.GameID, req.PeerID},
			Target:       s.contractAddress(),
		},
	})
}

type BetTokenBalanceRequest struct {
	OrgID  string
	PeerID string
}

type BetTokenBalanceResult struct {
	OrgID   string
	PeerID  string
	Balance int64
}

// BetTokenBalance reads the peer's game token balance. Like
// submissions, reads resolve the org's latest credential and require it
// activated.
func (s *Service) BetTokenBalance(ctx context.Context, req BetTokenBalanceRequest) (result BetTokenBalanceResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"org_id": req.OrgID}
	defer func() {
		s.observeOperation(ctx, startedAt, "bet_token_balance", err, fields)
	}()

	if s == nil || s.apiKeyStore == nil {
		return BetTokenBalanceResult{}, s.mapError(fmt.Errorf("core: api key store is required"))
	}
	if s.ledgerReader == nil {
		return BetTokenBalanceResult{}, s.mapError(fmt.Errorf("core: ledger reader is required"))
	}
	orgID := strings.TrimSpace(req.OrgID)
	if orgID == "" {
		return BetTokenBalanceResult{}, s.mapError(fmt.Errorf("core: org id is required"))
	}
	if err = requireField("peer id", req.PeerID); err != nil {
		err = s.mapError(err)
		return BetTokenBalanceResult{}, err
	}

	credential, err := s.resolveActivatedCredential(ctx, orgID)
	if err != nil {
		return BetTokenBalanceResult{}, err
	}

	balance, err := s.ledgerReader.BetTokenBalance(ctx, credential, req.PeerID)
	if err != nil {
		err = s.mapError(err)
		return BetTokenBalanceResult{}, err
	}
	return BetTokenBalanceResult{
		OrgID:   orgID,
		PeerID:  req.PeerID,
		Balance: balance,
	}, nil
}

func (s *Service) resolveActivatedCredential(ctx context.Context, orgID string) (Credential, error) {
	credential, err := s.apiKeyStore.GetLatestAPIKey(ctx, orgID)
	if err != nil {
		return Credential{}, s.mapError(err)
	}
	if credential == nil {
		return Credential{}, s.mapError(fmt.Errorf("%w: org %q", ErrAPIKeyNotFound, orgID))
	}
	if !credential.Activated() {
		return Credential{}, s.mapError(fmt.Errorf("%w: org %q key %s", ErrAPIKeyNotActivated, orgID, credential.PublicKey))
	}
	return *credential, nil
}

func (s *Service) contractAddress() string {
	if s == nil {
		return ""
	}
	return s.config.Ledger.ContractAddress
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func requireField(name string, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("core: %s is required", name)
	}
	return nil
}
