package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SaveUserMessage]       = (*SaveUserCommand)(nil)
	_ gocmd.Commander[ActivateAPIKeyMessage] = (*ActivateAPIKeyCommand)(nil)
	_ gocmd.Commander[RegisterPeerMessage]   = (*RegisterPeerCommand)(nil)
	_ gocmd.Commander[SubmitRewardMessage]   = (*SubmitRewardCommand)(nil)
	_ gocmd.Commander[SubmitWinnerMessage]   = (*SubmitWinnerCommand)(nil)
	_ gocmd.Commander[GuessAnswerMessage]    = (*GuessAnswerCommand)(nil)
	_ gocmd.Commander[ClaimRewardMessage]    = (*ClaimRewardCommand)(nil)
)
