package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-userops/core"
)

// MutatingService is the slice of the gateway surface the command layer
// drives. Read-only queries stay on the service itself.
type MutatingService interface {
	SaveUser(ctx context.Context, req core.SaveUserRequest) (core.SaveUserResult, error)
	ActivateAPIKey(ctx context.Context, in core.ActivateAPIKeyInput) error
	RegisterPeer(ctx context.Context, req core.RegisterPeerRequest) (core.OperationOutcome, error)
	SubmitReward(ctx context.Context, req core.SubmitRewardRequest) (core.OperationOutcome, error)
	SubmitWinner(ctx context.Context, req core.SubmitWinnerRequest) (core.OperationOutcome, error)
	GuessAnswer(ctx context.Context, req core.GuessAnswerRequest) (core.OperationOutcome, error)
	ClaimReward(ctx context.Context, req core.ClaimRewardRequest) (core.OperationOutcome, error)
}

type SaveUserCommand struct {
	service MutatingService
}

func NewSaveUserCommand(service MutatingService) *SaveUserCommand {
	return &SaveUserCommand{service: service}
}

func (c *SaveUserCommand) Execute(ctx context.Context, msg SaveUserMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: save user service is required")
	}
	out, err := c.service.SaveUser(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ActivateAPIKeyCommand struct {
	service MutatingService
}

func NewActivateAPIKeyCommand(service MutatingService) *ActivateAPIKeyCommand {
	return &ActivateAPIKeyCommand{service: service}
}

func (c *ActivateAPIKeyCommand) Execute(ctx context.Context, msg ActivateAPIKeyMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: activate api key service is required")
	}
	return c.service.ActivateAPIKey(ctx, msg.Input)
}

type RegisterPeerCommand struct {
	service MutatingService
}

func NewRegisterPeerCommand(service MutatingService) *RegisterPeerCommand {
	return &RegisterPeerCommand{service: service}
}

func (c *RegisterPeerCommand) Execute(ctx context.Context, msg RegisterPeerMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: register peer service is required")
	}
	out, err := c.service.RegisterPeer(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SubmitRewardCommand struct {
	service MutatingService
}

func NewSubmitRewardCommand(service MutatingService) *SubmitRewardCommand {
	return &SubmitRewardCommand{service: service}
}

func (c *SubmitRewardCommand) Execute(ctx context.Context, msg SubmitRewardMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: submit reward service is required")
	}
	out, err := c.service.SubmitReward(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SubmitWinnerCommand struct {
	service MutatingService
}

func NewSubmitWinnerCommand(service MutatingService) *SubmitWinnerCommand {
	return &SubmitWinnerCommand{service: service}
}

func (c *SubmitWinnerCommand) Execute(ctx context.Context, msg SubmitWinnerMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: submit winner service is required")
	}
	out, err := c.service.SubmitWinner(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type GuessAnswerCommand struct {
	service MutatingService
}

func NewGuessAnswerCommand(service MutatingService) *GuessAnswerCommand {
	return &GuessAnswerCommand{service: service}
}

func (c *GuessAnswerCommand) Execute(ctx context.Context, msg GuessAnswerMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: guess answer service is required")
	}
	out, err := c.service.GuessAnswer(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ClaimRewardCommand struct {
	service MutatingService
}

func NewClaimRewardCommand(service MutatingService) *ClaimRewardCommand {
	return &ClaimRewardCommand{service: service}
}

func (c *ClaimRewardCommand) Execute(ctx context.Context, msg ClaimRewardMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: claim reward service is required")
	}
	out, err := c.service.ClaimReward(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
