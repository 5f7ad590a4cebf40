package core

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryRecordStore struct {
	mu    sync.Mutex
	users map[string]UserIdentity
	keys  map[string][]Credential
}

func newMemoryRecordStore() *memoryRecordStore {
	return &memoryRecordStore{
		users: map[string]UserIdentity{},
		keys:  map[string][]Credential{},
	}
}

func (s *memoryRecordStore) UpsertUser(_ context.Context, identity UserIdentity, credential Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = map[string]UserIdentity{identity.OrgID: identity}
	s.keys[identity.OrgID] = append(s.keys[identity.OrgID], credential)
	return nil
}

func (s *memoryRecordStore) GetUser(_ context.Context, orgID string) (*UserIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.users[orgID]
	if !ok {
		return nil, nil
	}
	return &identity, nil
}

func (s *memoryRecordStore) GetLatestAPIKey(_ context.Context, orgID string) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest, ok := LatestCredential(s.keys[orgID])
	if !ok {
		return nil, nil
	}
	return &latest, nil
}

func (s *memoryRecordStore) SetAPIKeyActivated(_ context.Context, in ActivateAPIKeyInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.keys[in.OrgID]
	if !ok {
		return fmt.Errorf("%w: org %q", ErrAPIKeyNotFound, in.OrgID)
	}
	for i := range list {
		if list[i].PublicKey != in.PublicKey {
			continue
		}
		if err := list[i].Activate(Activation{
			DeferredActionDigest: in.DeferredActionDigest,
			AccountAddress:       in.AccountAddress,
			InitCode:             in.InitCode,
		}); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("%w: key %s", ErrAPIKeyNotFound, in.PublicKey)
}

type staticIdentityVerifier struct {
	identity UserIdentity
	err      error
}

func (v staticIdentityVerifier) VerifyIdentity(context.Context, IdentityProof) (UserIdentity, error) {
	return v.identity, v.err
}

type sequenceKeyIssuer struct {
	mu   sync.Mutex
	next int
}

func (i *sequenceKeyIssuer) IssueKeypair(context.Context) (string, string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.next++
	public := fmt.Sprintf("0x%032x", i.next)
	private := fmt.Sprintf("0x%032x", 1000+i.next)
	return public, private, nil
}

type scriptedSender struct {
	executeErr   error
	watchErrs    []error
	hash         string
	executeCalls int
	watchCalls   int
	replaceCalls int
}

func (s *scriptedSender) Execute(context.Context) (SubmittedOperation, error) {
	s.executeCalls++
	if s.executeErr != nil {
		return SubmittedOperation{}, s.executeErr
	}
	return SubmittedOperation{ID: "sub-1"}, nil
}

func (s *scriptedSender) Watch(_ context.Context, submitted SubmittedOperation) (string, error) {
	index := s.watchCalls
	s.watchCalls++
	if index < len(s.watchErrs) && s.watchErrs[index] != nil {
		return "", s.watchErrs[index]
	}
	if s.hash == "" {
		return "0xconfirmed", nil
	}
	return s.hash, nil
}

func (s *scriptedSender) Replace(_ context.Context, submitted SubmittedOperation) (SubmittedOperation, error) {
	s.replaceCalls++
	return SubmittedOperation{ID: fmt.Sprintf("sub-%d", s.replaceCalls+1)}, nil
}

type staticSenderFactory struct {
	sender Sender
	err    error

	lastCredential Credential
	lastOperation  Operation
}

func (f *staticSenderFactory) Sender(_ context.Context, credential Credential, operation Operation) (Sender, error) {
	f.lastCredential = credential
	f.lastOperation = operation
	return f.sender, f.err
}

type outcomeSubmitter struct {
	outcome OperationOutcome
	err     error
	calls   int
}

func (s *outcomeSubmitter) Submit(context.Context, Sender) (OperationOutcome, error) {
	s.calls++
	return s.outcome, s.err
}

func seedActivatedOrg(store *memoryRecordStore, orgID string) Credential {
	credential, _ := NewPendingCredential(testPublicKey, testPrivateKey, time.Now().UTC())
	_ = credential.Activate(testActivation())
	store.users[orgID] = UserIdentity{OrgID: orgID, Address: testAddress, UserID: "user-1"}
	store.keys[orgID] = append(store.keys[orgID], credential)
	return credential
}
