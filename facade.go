package userops

import (
	"fmt"

	useropscommand "github.com/goliatone/go-userops/command"
)

// Commands bundles the command handlers for the mutating gateway
// operations, all bound to the same service.
type Commands struct {
	SaveUser       *useropscommand.SaveUserCommand
	ActivateAPIKey *useropscommand.ActivateAPIKeyCommand
	RegisterPeer   *useropscommand.RegisterPeerCommand
	SubmitReward   *useropscommand.SubmitRewardCommand
	SubmitWinner   *useropscommand.SubmitWinnerCommand
	GuessAnswer    *useropscommand.GuessAnswerCommand
	ClaimReward    *useropscommand.ClaimRewardCommand
}

type Facade struct {
	service  useropscommand.MutatingService
	commands Commands
}

func NewFacade(service useropscommand.MutatingService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("userops: mutating service is required")
	}
	facade := &Facade{service: service}
	facade.commands = Commands{
		SaveUser:       useropscommand.NewSaveUserCommand(service),
		ActivateAPIKey: useropscommand.NewActivateAPIKeyCommand(service),
		RegisterPeer:   useropscommand.NewRegisterPeerCommand(service),
		SubmitReward:   useropscommand.NewSubmitRewardCommand(service),
		SubmitWinner:   useropscommand.NewSubmitWinnerCommand(service),
		GuessAnswer:    useropscommand.NewGuessAnswerCommand(service),
		ClaimReward:    useropscommand.NewClaimRewardCommand(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Service() useropscommand.MutatingService {
	if f == nil {
		return nil
	}
	return f.service
}
