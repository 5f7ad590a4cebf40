package inbound

import (
	"context"
	"encoding/json"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-userops/core"
)

// GatewayService is the slice of the service surface the HTTP layer
// needs.
type GatewayService interface {
	SaveUser(ctx context.Context, req core.SaveUserRequest) (core.SaveUserResult, error)
	ActivateAPIKey(ctx context.Context, in core.ActivateAPIKeyInput) error
	APIKeyStatus(ctx context.Context, orgID string) (core.APIKeyStatusResult, error)
	RegisterPeer(ctx context.Context, req core.RegisterPeerRequest) (core.OperationOutcome, error)
	SubmitReward(ctx context.Context, req core.SubmitRewardRequest) (core.OperationOutcome, error)
	SubmitWinner(ctx context.Context, req core.SubmitWinnerRequest) (core.OperationOutcome, error)
	GuessAnswer(ctx context.Context, req core.GuessAnswerRequest) (core.OperationOutcome, error)
	ClaimReward(ctx context.Context, req core.ClaimRewardRequest) (core.OperationOutcome, error)
	BetTokenBalance(ctx context.Context, req core.BetTokenBalanceRequest) (core.BetTokenBalanceResult, error)
}

type Handler struct {
	service GatewayService
	logger  core.Logger
}

type HandlerOption func(*Handler)

func WithLogger(logger core.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHandler(service GatewayService, options ...HandlerOption) *Handler {
	handler := &Handler{
		service: service,
		logger:  glog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(handler)
	}
	return handler
}

// Register mounts every gateway endpoint on the mux. All endpoints are
// POST with JSON bodies, matching what the swarm coordinator, the game
// clients, and the login modal send.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/save-user", h.SaveUser)
	mux.HandleFunc("POST /api/set-api-key-activated", h.SetAPIKeyActivated)
	mux.HandleFunc("POST /api/get-api-key-status", h.GetAPIKeyStatus)
	mux.HandleFunc("POST /api/register-peer", h.RegisterPeer)
	mux.HandleFunc("POST /api/submit-reward", h.SubmitReward)
	mux.HandleFunc("POST /api/submit-winner", h.SubmitWinner)
	mux.HandleFunc("POST /api/guess-answer", h.GuessAnswer)
	mux.HandleFunc("POST /api/claim-reward", h.ClaimReward)
	mux.HandleFunc("POST /api/bet-token-balance", h.BetTokenBalance)
}

type saveUserPayload struct {
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

type saveUserResponse struct {
	OrgID     string `json:"orgId"`
	PublicKey string `json:"publicKey"`
}

func (h *Handler) SaveUser(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		h.writeError(w, inboundInternal("inbound: gateway service is required", nil))
		return
	}
	var payload saveUserPayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	result, err := h.service.SaveUser(r.Context(), core.SaveUserRequest{
		Proof: core.IdentityProof{
			Payload:   payload.Payload,
			Signature: payload.Signature,
		},
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveUserResponse{
		OrgID:     result.Identity.OrgID,
		PublicKey: result.PublicKey,
	})
}

type activatePayload struct {
	OrgID                string `json:"orgId"`
	PublicKey            string `json:"publicKey"`
	DeferredActionDigest string `json:"deferredActionDigest"`
	AccountAddress       string `json:"accountAddress"`
	InitCode             string `json:"initCode"`
}

func (h *Handler) SetAPIKeyActivated(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		h.writeError(w, inboundInternal("inbound: gateway service is required", nil))
		return
	}
	var payload activatePayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	err := h.service.ActivateAPIKey(r.Context(), core.ActivateAPIKeyInput{
		OrgID:                payload.OrgID,
		PublicKey:            payload.PublicKey,
		DeferredActionDigest: payload.DeferredActionDigest,
		AccountAddress:       payload.AccountAddress,
		InitCode:             payload.InitCode,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type orgPayload struct {
	OrgID string `json:"orgId"`
}

type apiKeyStatusResponse struct {
	Status string `json:"status"`
}

func (h *Handler) GetAPIKeyStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		h.writeError(w, inboundInternal("inbound: gateway service is required", nil))
		return
	}
	var payload orgPayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	result, err := h.service.APIKeyStatus(r.Context(), payload.OrgID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiKeyStatusResponse{Status: string(result.Status)})
}

type registerPeerPayload struct {
	OrgID  string `json:"orgId"`
	PeerID string `json:"peerId"`
}

func (h *Handler) RegisterPeer(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		h.writeError(w, inboundInternal("inbound: gateway service is required", nil))
		return
	}
	var payload registerPeerPayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	outcome, err := h.service.RegisterPeer(r.Context(), core.RegisterPeerRequest{
		OrgID:  payload.OrgID,
		PeerID: payload.PeerID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

type submitRewardPayload struct {
	OrgID       string `json:"orgId"`
	RoundNumber int64  `json:"roundNumber"`
	StageNumber int64  `json:"stageNumber"`
	Reward      int64  `json:"reward"`
	PeerID      string `json:"peerId"`
}

func (h *Handler) SubmitReward(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		h.writeError(w, inboundInternal("inbound: gateway service is required", nil))
		return
	}
	var payload submitRewardPayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	outcome, err := h.service.SubmitReward(r.Context(), core.SubmitRewardRequest{
		OrgID:       payload.OrgID,
		RoundNumber: payload.RoundNumber,
		StageNumber: payload.StageNumber,
		Reward:      payload.Reward,
		PeerID:      payload.PeerID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

type submitWinnerPayload struct {
	OrgID       string   `json:"orgId"`
	RoundNumber int64    `json:"roundNumber"`
	Winners     []string `json:"winners"`
	PeerID      string   `json:"peerId"`
}

func (h *Handler) SubmitWinner(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		h.writeError(w, inboundInternal("inbound: gateway service is required", nil))
		return
	}
	var payload submitWinnerPayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	outcome, err := h.service.SubmitWinner(r.Context(), core.SubmitWinnerRequest{
		OrgID:       payload.OrgID,
		RoundNumber: payload.RoundNumber,
		Winners:     payload.Winners,
		PeerID:      payload.PeerID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

type guessAnswerPayload struct {
	OrgID     string `json:"orgId"`
	GameID    int64  `json:"gameId"`
	PeerID    string `json:"peerId"`
	ClueID    int64  `json:"clueId"`
	ChoiceIdx int64  `json:"choiceIdx"`
	Bet       int64  `json:"bet"`
}

func (h *Handler) GuessAnswer(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		h.writeError(w, inboundInternal("inbound: gateway service is required", nil))
		return
	}
	var payload guessAnswerPayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	outcome, err := h.service.GuessAnswer(r.Context(), core.GuessAnswerRequest{
		OrgID:     payload.OrgID,
		GameID:    payload.GameID,
		PeerID:    payload.PeerID,
		ClueID:    payload.ClueID,
		ChoiceIdx: payload.ChoiceIdx,
		Bet:       payload.Bet,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

type claimRewardPayload struct {
	OrgID  string `json:"orgId"`
	GameID int64  `json:"gameId"`
	PeerID string `json:"peerId"`
}

func (h *Handler) ClaimReward(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		h.writeError(w, inboundInternal("inbound: gateway service is required", nil))
		return
	}
	var payload claimRewardPayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	outcome, err := h.service.ClaimReward(r.Context(), core.ClaimRewardRequest{
		OrgID:  payload.OrgID,
		GameID: payload.GameID,
		PeerID: payload.PeerID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

type betTokenBalancePayload struct {
	OrgID  string `json:"orgId"`
	PeerID string `json:"peerId"`
}

type betTokenBalanceResponse struct {
	Result int64 `json:"result"`
}

// BetTokenBalance is the one read on the game surface; game clients
// parse the balance out of the result field.
func (h *Handler) BetTokenBalance(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		h.writeError(w, inboundInternal("inbound: gateway service is required", nil))
		return
	}
	var payload betTokenBalancePayload
	if err := decodeBody(r, &payload); err != nil {
		h.writeError(w, err)
		return
	}
	result, err := h.service.BetTokenBalance(r.Context(), core.BetTokenBalanceRequest{
		OrgID:  payload.OrgID,
		PeerID: payload.PeerID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, betTokenBalanceResponse{Result: result.Balance})
}

type outcomeResponse struct {
	Hash     string `json:"hash,omitempty"`
	Error    string `json:"error,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
}

// writeOutcome renders a ledger submission outcome. Decoded reverts
// surface as 400 with the symbolic name in the error field, the shape
// swarm peers branch on. Everything else the ledger reports is a 500.
func (h *Handler) writeOutcome(w http.ResponseWriter, outcome core.OperationOutcome) {
	switch outcome.Kind {
	case core.OutcomeSuccess:
		writeJSON(w, http.StatusOK, outcomeResponse{Hash: outcome.Hash})
	case core.OutcomeReplacementsExceeded:
		writeJSON(w, http.StatusInternalServerError, outcomeResponse{
			Error:    "replacement limit exceeded",
			Attempts: outcome.Attempts,
		})
	case core.OutcomeFailure:
		h.writeFailure(w, outcome.Failure)
	default:
		h.writeError(w, inboundInternal("inbound: unknown submission outcome", map[string]any{
			"kind": string(outcome.Kind),
		}))
	}
}

func (h *Handler) writeFailure(w http.ResponseWriter, failure *core.OperationFailure) {
	if failure == nil {
		h.writeError(w, inboundInternal("inbound: failure outcome without detail", nil))
		return
	}
	switch failure.Kind {
	case core.FailureRevertDecoded:
		writeJSON(w, http.StatusBadRequest, outcomeResponse{Error: failure.Name})
	case core.FailureDecode:
		writeJSON(w, http.StatusInternalServerError, outcomeResponse{Error: "undecodable ledger failure"})
	default:
		writeJSON(w, http.StatusInternalServerError, outcomeResponse{Error: "unexpected ledger failure"})
	}
}

type errorResponse struct {
	Error    string `json:"error"`
	TextCode string `json:"textCode,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "An unexpected error occurred"
	textCode := core.GatewayErrorInternal

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.Code != 0 {
			status = richErr.Code
		}
		if richErr.Message != "" {
			message = richErr.Message
		}
		if richErr.TextCode != "" {
			textCode = richErr.TextCode
		}
	} else if err != nil {
		message = err.Error()
	}

	if h != nil && h.logger != nil && status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", message)
	}
	writeJSON(w, status, errorResponse{Error: message, TextCode: textCode})
}

func decodeBody(r *http.Request, target any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return inboundBadInput(err, "inbound: decode request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
