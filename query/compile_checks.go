package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-userops/core"
)

var (
	_ gocmd.Querier[GetUserMessage, core.UserIdentity]                     = (*GetUserQuery)(nil)
	_ gocmd.Querier[GetAPIKeyStatusMessage, core.APIKeyStatusResult]       = (*GetAPIKeyStatusQuery)(nil)
	_ gocmd.Querier[GetBetTokenBalanceMessage, core.BetTokenBalanceResult] = (*GetBetTokenBalanceQuery)(nil)
)
