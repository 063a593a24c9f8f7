package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/bankflow/internal/domain"
	"github.com/simaogato/bankflow/internal/usecase/accounts"
	"github.com/simaogato/bankflow/internal/usecase/intent"
	"github.com/simaogato/bankflow/internal/usecase/transfer"
)

// SessionFactory creates a fresh transfer session with its own timers
type SessionFactory func() *transfer.Session

// Handler exposes the transfer workflow over JSON/HTTP. Each created
// session maps to one transfer attempt; its lifecycle mirrors a transfer
// form being mounted and torn down.
type Handler struct {
	factory SessionFactory
	cache   *accounts.Cache
	log     zerolog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*transfer.Session
}

// NewHandler creates a handler backed by the given session factory and cache
func NewHandler(factory SessionFactory, cache *accounts.Cache, log zerolog.Logger) *Handler {
	return &Handler{
		factory:  factory,
		cache:    cache,
		log:      log.With().Str("component", "httpapi").Logger(),
		sessions: make(map[uuid.UUID]*transfer.Session),
	}
}

// RegisterRoutes mounts the workflow routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/accounts", h.listAccounts)
		r.Get("/form/selections", h.formSelections)

		r.Post("/sessions", h.createSession)
		r.Get("/sessions/{sessionID}", h.sessionState)
		r.Delete("/sessions/{sessionID}", h.closeSession)
		r.Post("/sessions/{sessionID}/details", h.submitDetails)
		r.Post("/sessions/{sessionID}/otp", h.submitOtp)
		r.Post("/sessions/{sessionID}/cancel", h.cancelSession)
	})
}

// CloseAll tears down every live session; used on server shutdown
func (h *Handler) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, session := range h.sessions {
		session.Close()
		delete(h.sessions, id)
	}
}

type detailsRequest struct {
	TransferType           string `json:"transferType"`
	FromAccountID          string `json:"fromAccountId"`
	ToAccountID            string `json:"toAccountId"`
	RecipientAccountNumber string `json:"recipientAccountNumber"`
	Amount                 string `json:"amount"`
	Description            string `json:"description"`
}

type otpRequest struct {
	Otp string `json:"otp"`
}

type intentDoc struct {
	TransferType           string `json:"transferType"`
	FromAccountID          string `json:"fromAccountId"`
	ToAccountID            string `json:"toAccountId,omitempty"`
	RecipientAccountNumber string `json:"recipientAccountNumber,omitempty"`
	Amount                 string `json:"amount"`
	Description            string `json:"description,omitempty"`
}

type disclosureDoc struct {
	Code     string `json:"code,omitempty"`
	Progress int    `json:"progress"`
	Visible  bool   `json:"visible"`
}

type sessionDoc struct {
	SessionID       string        `json:"sessionId"`
	Step            string        `json:"step"`
	Status          string        `json:"status"`
	FeedbackMessage string        `json:"feedbackMessage,omitempty"`
	EnteredOtp      string        `json:"enteredOtp,omitempty"`
	StoredIntent    *intentDoc    `json:"storedIntent,omitempty"`
	Disclosure      disclosureDoc `json:"disclosure"`
}

type accountDoc struct {
	ID            string `json:"id"`
	AccountNumber string `json:"accountNumber"`
	Nickname      string `json:"nickname,omitempty"`
	Type          string `json:"type"`
	Balance       string `json:"balance"`
}

type selectionsDoc struct {
	FromAccountID string `json:"fromAccountId"`
	ToAccountID   string `json:"toAccountId,omitempty"`
}

type errorDoc struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	session := h.factory()

	h.mu.Lock()
	h.sessions[session.ID()] = session
	h.mu.Unlock()

	h.log.Info().Str("session_id", session.ID().String()).Msg("Transfer session created")
	writeJSON(w, http.StatusCreated, sessionToDoc(session))
}

func (h *Handler) sessionState(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionToDoc(session))
}

func (h *Handler) submitDetails(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var body detailsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorDoc{Message: "invalid JSON body"})
		return
	}

	err := session.SubmitDetails(r.Context(), intent.DetailsInput{
		Type:                   domain.TransferType(body.TransferType),
		FromAccountID:          body.FromAccountID,
		ToAccountID:            body.ToAccountID,
		RecipientAccountNumber: body.RecipientAccountNumber,
		Amount:                 body.Amount,
		Description:            body.Description,
	})
	h.respondAfterSubmit(w, session, err)
}

func (h *Handler) submitOtp(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var body otpRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorDoc{Message: "invalid JSON body"})
		return
	}

	err := session.SubmitOtp(r.Context(), body.Otp)
	h.respondAfterSubmit(w, session, err)
}

func (h *Handler) cancelSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	session.Cancel()
	writeJSON(w, http.StatusOK, sessionToDoc(session))
}

func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorDoc{Message: "invalid session id"})
		return
	}

	h.mu.Lock()
	session, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	h.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, errorDoc{Message: "session not found"})
		return
	}

	session.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	listed := h.cache.List()

	docs := make([]accountDoc, 0, len(listed))
	for _, acc := range listed {
		docs = append(docs, accountDoc{
			ID:            acc.ID,
			AccountNumber: acc.AccountNumber,
			Nickname:      acc.Nickname,
			Type:          string(acc.Type),
			Balance:       acc.Balance.String(),
		})
	}
	writeJSON(w, http.StatusOK, docs)
}

// formSelections resolves valid form selections after the account set
// changed: a vanished source falls back to the first account, a destination
// colliding with the source moves to the first eligible alternative.
func (h *Handler) formSelections(w http.ResponseWriter, r *http.Request) {
	listed := h.cache.List()

	from := intent.ReselectFrom(r.URL.Query().Get("from"), listed)
	doc := selectionsDoc{FromAccountID: from}
	if domain.TransferType(r.URL.Query().Get("type")) == domain.TransferTypeInternal {
		doc.ToAccountID = intent.ReselectTo(from, r.URL.Query().Get("to"), listed)
	}
	writeJSON(w, http.StatusOK, doc)
}

// respondAfterSubmit maps submission outcomes onto HTTP:
// guard rejections (busy, wrong step, closed) are conflicts; validation
// failures are bad requests naming the field; Authority rejections were
// absorbed into the session state, so the new state is returned as-is.
func (h *Handler) respondAfterSubmit(w http.ResponseWriter, session *transfer.Session, err error) {
	switch {
	case errors.Is(err, transfer.ErrBusy), errors.Is(err, transfer.ErrWrongStep), errors.Is(err, transfer.ErrClosed):
		writeJSON(w, http.StatusConflict, errorDoc{Message: err.Error()})
	default:
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, errorDoc{Message: vErr.Error(), Field: vErr.Field})
			return
		}
		writeJSON(w, http.StatusOK, sessionToDoc(session))
	}
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*transfer.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorDoc{Message: "invalid session id"})
		return nil, false
	}

	h.mu.Lock()
	session, ok := h.sessions[id]
	h.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, errorDoc{Message: "session not found"})
		return nil, false
	}
	return session, true
}

func sessionToDoc(session *transfer.Session) sessionDoc {
	state := session.State()
	shown := session.Disclosure()

	doc := sessionDoc{
		SessionID:       session.ID().String(),
		Step:            string(state.Step),
		Status:          string(state.Status),
		FeedbackMessage: state.FeedbackMessage,
		EnteredOtp:      state.EnteredOtp,
		Disclosure: disclosureDoc{
			Code:     shown.Code,
			Progress: shown.Progress,
			Visible:  shown.Visible,
		},
	}
	if state.StoredIntent != nil {
		doc.StoredIntent = &intentDoc{
			TransferType:           string(state.StoredIntent.Type),
			FromAccountID:          state.StoredIntent.FromAccountID,
			ToAccountID:            state.StoredIntent.ToAccountID,
			RecipientAccountNumber: state.StoredIntent.RecipientAccountNumber,
			Amount:                 state.StoredIntent.Amount.String(),
			Description:            state.StoredIntent.Description,
		}
	}
	return doc
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
