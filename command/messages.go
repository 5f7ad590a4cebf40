package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-userops/core"
)

const (
	TypeSaveUser       = "userops.command.user.save"
	TypeActivateAPIKey = "userops.command.api_key.activate"
	TypeRegisterPeer   = "userops.command.peer.register"
	TypeSubmitReward   = "userops.command.reward.submit"
	TypeSubmitWinner   = "userops.command.winner.submit"
	TypeGuessAnswer    = "userops.command.answer.guess"
	TypeClaimReward    = "userops.command.reward.claim"
)

type SaveUserMessage struct {
	Request core.SaveUserRequest
}

func (SaveUserMessage) Type() string { return TypeSaveUser }

func (m SaveUserMessage) Validate() error {
	if strings.TrimSpace(m.Request.Proof.Payload) == "" {
		return fmt.Errorf("command: identity proof payload is required")
	}
	if strings.TrimSpace(m.Request.Proof.Signature) == "" {
		return fmt.Errorf("command: identity proof signature is required")
	}
	return nil
}

type ActivateAPIKeyMessage struct {
	Input core.ActivateAPIKeyInput
}

func (ActivateAPIKeyMessage) Type() string { return TypeActivateAPIKey }

func (m ActivateAPIKeyMessage) Validate() error {
	return m.Input.Validate()
}

type RegisterPeerMessage struct {
	Request core.RegisterPeerRequest
}

func (RegisterPeerMessage) Type() string { return TypeRegisterPeer }

func (m RegisterPeerMessage) Validate() error {
	if err := validateOrgID(m.Request.OrgID); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.PeerID) == "" {
		return fmt.Errorf("command: peer id is required")
	}
	return nil
}

type SubmitRewardMessage struct {
	Request core.SubmitRewardRequest
}

func (SubmitRewardMessage) Type() string { return TypeSubmitReward }

func (m SubmitRewardMessage) Validate() error {
	if err := validateOrgID(m.Request.OrgID); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.PeerID) == "" {
		return fmt.Errorf("command: peer id is required")
	}
	if m.Request.RoundNumber < 0 {
		return fmt.Errorf("command: round number must not be negative")
	}
	if m.Request.StageNumber < 0 {
		return fmt.Errorf("command: stage number must not be negative")
	}
	return nil
}

type SubmitWinnerMessage struct {
	Request core.SubmitWinnerRequest
}

func (SubmitWinnerMessage) Type() string { return TypeSubmitWinner }

func (m SubmitWinnerMessage) Validate() error {
	if err := validateOrgID(m.Request.OrgID); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.PeerID) == "" {
		return fmt.Errorf("command: peer id is required")
	}
	if m.Request.RoundNumber < 0 {
		return fmt.Errorf("command: round number must not be negative")
	}
	if len(m.Request.Winners) == 0 {
		return fmt.Errorf("command: winners are required")
	}
	return nil
}

type GuessAnswerMessage struct {
	Request core.GuessAnswerRequest
}

func (GuessAnswerMessage) Type() string { return TypeGuessAnswer }

func (m GuessAnswerMessage) Validate() error {
	if err := validateOrgID(m.Request.OrgID); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.PeerID) == "" {
		return fmt.Errorf("command: peer id is required")
	}
	if m.Request.Bet < 0 {
		return fmt.Errorf("command: bet must not be negative")
	}
	if m.Request.ChoiceIdx < 0 {
		return fmt.Errorf("command: choice index must not be negative")
	}
	return nil
}

type ClaimRewardMessage struct {
	Request core.ClaimRewardRequest
}

func (ClaimRewardMessage) Type() string { return TypeClaimReward }

func (m ClaimRewardMessage) Validate() error {
	if err := validateOrgID(m.Request.OrgID); err != nil {
		return err
	}
	if strings.TrimSpace(m.Request.PeerID) == "" {
		return fmt.Errorf("command: peer id is required")
	}
	return nil
}

func validateOrgID(orgID string) error {
	if strings.TrimSpace(orgID) == "" {
		return fmt.Errorf("command: org id is required")
	}
	return nil
}
