package command

import (
	"context"
	"fmt"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-userops/core"
)

type stubMutatingService struct {
	saveUserFn       func(ctx context.Context, req core.SaveUserRequest) (core.SaveUserResult, error)
	activateAPIKeyFn func(ctx context.Context, in core.ActivateAPIKeyInput) error
	registerPeerFn   func(ctx context.Context, req core.RegisterPeerRequest) (core.OperationOutcome, error)
	submitRewardFn   func(ctx context.Context, req core.SubmitRewardRequest) (core.OperationOutcome, error)
	submitWinnerFn   func(ctx context.Context, req core.SubmitWinnerRequest) (core.OperationOutcome, error)
	guessAnswerFn    func(ctx context.Context, req core.GuessAnswerRequest) (core.OperationOutcome, error)
	claimRewardFn    func(ctx context.Context, req core.ClaimRewardRequest) (core.OperationOutcome, error)
}

func (s stubMutatingService) SaveUser(ctx context.Context, req core.SaveUserRequest) (core.SaveUserResult, error) {
	if s.saveUserFn == nil {
		return core.SaveUserResult{}, fmt.Errorf("unexpected SaveUser call")
	}
	return s.saveUserFn(ctx, req)
}

func (s stubMutatingService) ActivateAPIKey(ctx context.Context, in core.ActivateAPIKeyInput) error {
	if s.activateAPIKeyFn == nil {
		return fmt.Errorf("unexpected ActivateAPIKey call")
	}
	return s.activateAPIKeyFn(ctx, in)
}

func (s stubMutatingService) RegisterPeer(ctx context.Context, req core.RegisterPeerRequest) (core.OperationOutcome, error) {
	if s.registerPeerFn == nil {
		return core.OperationOutcome{}, fmt.Errorf("unexpected RegisterPeer call")
	}
	return s.registerPeerFn(ctx, req)
}

func (s stubMutatingService) SubmitReward(ctx context.Context, req core.SubmitRewardRequest) (core.OperationOutcome, error) {
	if s.submitRewardFn == nil {
		return core.OperationOutcome{}, fmt.Errorf("unexpected SubmitReward call")
	}
	return s.submitRewardFn(ctx, req)
}

func (s stubMutatingService) SubmitWinner(ctx context.Context, req core.SubmitWinnerRequest) (core.OperationOutcome, error) {
	if s.submitWinnerFn == nil {
		return core.OperationOutcome{}, fmt.Errorf("unexpected SubmitWinner call")
	}
	return s.submitWinnerFn(ctx, req)
}

func (s stubMutatingService) GuessAnswer(ctx context.Context, req core.GuessAnswerRequest) (core.OperationOutcome, error) {
	if s.guessAnswerFn == nil {
		return core.OperationOutcome{}, fmt.Errorf("unexpected GuessAnswer call")
	}
	return s.guessAnswerFn(ctx, req)
}

func (s stubMutatingService) ClaimReward(ctx context.Context, req core.ClaimRewardRequest) (core.OperationOutcome, error) {
	if s.claimRewardFn == nil {
		return core.OperationOutcome{}, fmt.Errorf("unexpected ClaimReward call")
	}
	return s.claimRewardFn(ctx, req)
}

func TestSaveUserCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.SaveUserResult{
		Identity:  core.UserIdentity{OrgID: "org-a", Address: "0xabc", UserID: "usr-1"},
		PublicKey: "0x04aa",
	}
	called := false

	svc := stubMutatingService{
		saveUserFn: func(_ context.Context, req core.SaveUserRequest) (core.SaveUserResult, error) {
			called = true
			if req.Proof.Payload != "payload" {
				t.Fatalf("expected proof payload, got %q", req.Proof.Payload)
			}
			return expected, nil
		},
	}

	cmd := NewSaveUserCommand(svc)
	collector := gocmd.NewResult[core.SaveUserResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, SaveUserMessage{Request: core.SaveUserRequest{
		Proof: core.IdentityProof{Payload: "payload", Signature: "sig"},
	}})
	if err != nil {
		t.Fatalf("execute save user: %v", err)
	}
	if !called {
		t.Fatalf("expected save user invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.PublicKey != expected.PublicKey || result.Identity.OrgID != expected.Identity.OrgID {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestMutationCommands_DelegateToService(t *testing.T) {
	t.Run("activate api key", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			activateAPIKeyFn: func(_ context.Context, in core.ActivateAPIKeyInput) error {
				called = true
				if in.OrgID != "org-a" || in.PublicKey != "0x04aa" {
					t.Fatalf("unexpected activation payload: %#v", in)
				}
				return nil
			},
		}
		cmd := NewActivateAPIKeyCommand(svc)
		err := cmd.Execute(context.Background(), ActivateAPIKeyMessage{Input: core.ActivateAPIKeyInput{
			OrgID:     "org-a",
			PublicKey: "0x04aa",
		}})
		if err != nil {
			t.Fatalf("execute activate api key: %v", err)
		}
		if !called {
			t.Fatalf("expected activation invocation")
		}
	})

	t.Run("register peer", func(t *testing.T) {
		expected := core.SuccessOutcome("0xhash")
		called := false
		svc := stubMutatingService{
			registerPeerFn: func(_ context.Context, req core.RegisterPeerRequest) (core.OperationOutcome, error) {
				called = true
				if req.OrgID != "org-a" || req.PeerID != "peer-1" {
					t.Fatalf("unexpected register payload: %#v", req)
				}
				return expected, nil
			},
		}
		cmd := NewRegisterPeerCommand(svc)
		collector := gocmd.NewResult[core.OperationOutcome]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		err := cmd.Execute(ctx, RegisterPeerMessage{Request: core.RegisterPeerRequest{
			OrgID:  "org-a",
			PeerID: "peer-1",
		}})
		if err != nil {
			t.Fatalf("execute register peer: %v", err)
		}
		if !called {
			t.Fatalf("expected register peer invocation")
		}
		stored, ok := collector.Load()
		if !ok {
			t.Fatalf("expected outcome result")
		}
		if stored.Hash != expected.Hash {
			t.Fatalf("unexpected outcome: %#v", stored)
		}
	})

	t.Run("submit reward", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			submitRewardFn: func(_ context.Context, req core.SubmitRewardRequest) (core.OperationOutcome, error) {
				called = true
				if req.RoundNumber != 3 || req.StageNumber != 1 || req.Reward != 42 {
					t.Fatalf("unexpected reward payload: %#v", req)
				}
				return core.SuccessOutcome("0xhash"), nil
			},
		}
		cmd := NewSubmitRewardCommand(svc)
		err := cmd.Execute(context.Background(), SubmitRewardMessage{Request: core.SubmitRewardRequest{
			OrgID:       "org-a",
			RoundNumber: 3,
			StageNumber: 1,
			Reward:      42,
			PeerID:      "peer-1",
		}})
		if err != nil {
			t.Fatalf("execute submit reward: %v", err)
		}
		if !called {
			t.Fatalf("expected submit reward invocation")
		}
	})

	t.Run("submit winner", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			submitWinnerFn: func(_ context.Context, req core.SubmitWinnerRequest) (core.OperationOutcome, error) {
				called = true
				if len(req.Winners) != 2 {
					t.Fatalf("unexpected winners payload: %#v", req)
				}
				return core.SuccessOutcome("0xhash"), nil
			},
		}
		cmd := NewSubmitWinnerCommand(svc)
		err := cmd.Execute(context.Background(), SubmitWinnerMessage{Request: core.SubmitWinnerRequest{
			OrgID:       "org-a",
			RoundNumber: 3,
			Winners:     []string{"peer-1", "peer-2"},
			PeerID:      "peer-1",
		}})
		if err != nil {
			t.Fatalf("execute submit winner: %v", err)
		}
		if !called {
			t.Fatalf("expected submit winner invocation")
		}
	})

	t.Run("guess answer", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			guessAnswerFn: func(_ context.Context, req core.GuessAnswerRequest) (core.OperationOutcome, error) {
				called = true
				if req.GameID != 7 || req.ClueID != 3 || req.ChoiceIdx != 1 || req.Bet != 25 {
					t.Fatalf("unexpected guess payload: %#v", req)
				}
				return core.SuccessOutcome("0xhash"), nil
			},
		}
		cmd := NewGuessAnswerCommand(svc)
		err := cmd.Execute(context.Background(), GuessAnswerMessage{Request: core.GuessAnswerRequest{
			OrgID:     "org-a",
			GameID:    7,
			PeerID:    "peer-1",
			ClueID:    3,
			ChoiceIdx: 1,
			Bet:       25,
		}})
		if err != nil {
			t.Fatalf("execute guess answer: %v", err)
		}
		if !called {
			t.Fatalf("expected guess answer invocation")
		}
	})

	t.Run("claim reward", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			claimRewardFn: func(_ context.Context, req core.ClaimRewardRequest) (core.OperationOutcome, error) {
				called = true
				if req.GameID != 7 || req.PeerID != "peer-1" {
					t.Fatalf("unexpected claim payload: %#v", req)
				}
				return core.SuccessOutcome("0xhash"), nil
			},
		}
		cmd := NewClaimRewardCommand(svc)
		err := cmd.Execute(context.Background(), ClaimRewardMessage{Request: core.ClaimRewardRequest{
			OrgID:  "org-a",
			GameID: 7,
			PeerID: "peer-1",
		}})
		if err != nil {
			t.Fatalf("execute claim reward: %v", err)
		}
		if !called {
			t.Fatalf("expected claim reward invocation")
		}
	})
}

func TestMessages_Validate(t *testing.T) {
	cases := []struct {
		name    string
		message interface{ Validate() error }
		wantErr bool
	}{
		{
			name: "save user ok",
			message: SaveUserMessage{Request: core.SaveUserRequest{
				Proof: core.IdentityProof{Payload: "payload", Signature: "sig"},
			}},
		},
		{
			name:    "save user missing payload",
			message: SaveUserMessage{},
			wantErr: true,
		},
		{
			name: "register peer ok",
			message: RegisterPeerMessage{Request: core.RegisterPeerRequest{
				OrgID:  "org-a",
				PeerID: "peer-1",
			}},
		},
		{
			name: "register peer missing org",
			message: RegisterPeerMessage{Request: core.RegisterPeerRequest{
				PeerID: "peer-1",
			}},
			wantErr: true,
		},
		{
			name: "submit reward negative round",
			message: SubmitRewardMessage{Request: core.SubmitRewardRequest{
				OrgID:       "org-a",
				RoundNumber: -1,
				PeerID:      "peer-1",
			}},
			wantErr: true,
		},
		{
			name: "submit winner empty winners",
			message: SubmitWinnerMessage{Request: core.SubmitWinnerRequest{
				OrgID:  "org-a",
				PeerID: "peer-1",
			}},
			wantErr: true,
		},
		{
			name: "guess answer ok",
			message: GuessAnswerMessage{Request: core.GuessAnswerRequest{
				OrgID:  "org-a",
				GameID: 7,
				PeerID: "peer-1",
				Bet:    25,
			}},
		},
		{
			name: "guess answer negative bet",
			message: GuessAnswerMessage{Request: core.GuessAnswerRequest{
				OrgID:  "org-a",
				GameID: 7,
				PeerID: "peer-1",
				Bet:    -1,
			}},
			wantErr: true,
		},
		{
			name: "claim reward missing peer",
			message: ClaimRewardMessage{Request: core.ClaimRewardRequest{
				OrgID:  "org-a",
				GameID: 7,
			}},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.message.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestCommands_RequireService(t *testing.T) {
	if err := (&SaveUserCommand{}).Execute(context.Background(), SaveUserMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
	if err := (&RegisterPeerCommand{}).Execute(context.Background(), RegisterPeerMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
}
