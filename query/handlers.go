package query

import (
	"context"

	"github.com/goliatone/go-userops/core"
)

type UserReader interface {
	GetUser(ctx context.Context, orgID string) (core.UserIdentity, error)
}

type APIKeyStatusReader interface {
	APIKeyStatus(ctx context.Context, orgID string) (core.APIKeyStatusResult, error)
}

type GetUserQuery struct {
	reader UserReader
}

func NewGetUserQuery(reader UserReader) *GetUserQuery {
	return &GetUserQuery{reader: reader}
}

func (q *GetUserQuery) Query(ctx context.Context, msg GetUserMessage) (core.UserIdentity, error) {
	if q == nil || q.reader == nil {
		return core.UserIdentity{}, queryDependencyError("query: user reader is required")
	}
	return q.reader.GetUser(ctx, msg.OrgID)
}

type GetAPIKeyStatusQuery struct {
	reader APIKeyStatusReader
}

func NewGetAPIKeyStatusQuery(reader APIKeyStatusReader) *GetAPIKeyStatusQuery {
	return &GetAPIKeyStatusQuery{reader: reader}
}

func (q *GetAPIKeyStatusQuery) Query(ctx context.Context, msg GetAPIKeyStatusMessage) (core.APIKeyStatusResult, error) {
	if q == nil || q.reader == nil {
		return core.APIKeyStatusResult{}, queryDependencyError("query: api key status reader is required")
	}
	return q.reader.APIKeyStatus(ctx, msg.OrgID)
}

type BetTokenBalanceReader interface {
	BetTokenBalance(ctx context.Context, req core.BetTokenBalanceRequest) (core.BetTokenBalanceResult, error)
}

type GetBetTokenBalanceQuery struct {
	reader BetTokenBalanceReader
}

func NewGetBetTokenBalanceQuery(reader BetTokenBalanceReader) *GetBetTokenBalanceQuery {
	return &GetBetTokenBalanceQuery{reader: reader}
}

func (q *GetBetTokenBalanceQuery) Query(ctx context.Context, msg GetBetTokenBalanceMessage) (core.BetTokenBalanceResult, error) {
	if q == nil || q.reader == nil {
		return core.BetTokenBalanceResult{}, queryDependencyError("query: bet token balance reader is required")
	}
	return q.reader.BetTokenBalance(ctx, core.BetTokenBalanceRequest{
		OrgID:  msg.OrgID,
		PeerID: msg.PeerID,
	})
}
