package query

import (
	"fmt"
	"strings"
)

const (
	TypeGetUser            = "userops.query.user.get"
	TypeGetAPIKeyStatus    = "userops.query.api_key.status"
	TypeGetBetTokenBalance = "userops.query.bet_token.balance"
)

type GetUserMessage struct {
	OrgID string
}

func (GetUserMessage) Type() string { return TypeGetUser }

func (m GetUserMessage) Validate() error {
	if strings.TrimSpace(m.OrgID) == "" {
		return fmt.Errorf("query: org id is required")
	}
	return nil
}

type GetAPIKeyStatusMessage struct {
	OrgID string
}

func (GetAPIKeyStatusMessage) Type() string { return TypeGetAPIKeyStatus }

func (m GetAPIKeyStatusMessage) Validate() error {
	if strings.TrimSpace(m.OrgID) == "" {
		return fmt.Errorf("query: org id is required")
	}
	return nil
}

type GetBetTokenBalanceMessage struct {
	OrgID  string
	PeerID string
}

func (GetBetTokenBalanceMessage) Type() string { return TypeGetBetTokenBalance }

func (m GetBetTokenBalanceMessage) Validate() error {
	if strings.TrimSpace(m.OrgID) == "" {
		return fmt.Errorf("query: org id is required")
	}
	if strings.TrimSpace(m.PeerID) == "" {
		return fmt.Errorf("query: peer id is required")
	}
	return nil
}
