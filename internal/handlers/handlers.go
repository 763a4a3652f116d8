package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mgelashvili/ledger_service/internal/httputil"
	"github.com/mgelashvili/ledger_service/internal/ledger"
	"github.com/mgelashvili/ledger_service/internal/logger"
	"go.uber.org/zap"
)

// Request bodies are tiny; anything bigger than this is malformed.
const maxBodyBytes = 256

// LedgerService is the core consumed by the HTTP layer.
type LedgerService interface {
	Apply(ctx context.Context, accountID, amount int64, kind ledger.Kind, description string) (ledger.Snapshot, error)
	Extract(ctx context.Context, accountID int64) (ledger.Extract, error)
}

type Handler struct {
	svc  LedgerService
	ping func(context.Context) error
}

// New builds the handler set. ping may be nil; when set it backs /health.
func New(svc LedgerService, ping func(context.Context) error) *Handler {
	return &Handler{svc: svc, ping: ping}
}

type transactionRequest struct {
	Amount      int64  `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

type transactionResponse struct {
	Balance int64 `json:"balance"`
	Limit   int64 `json:"limit"`
}

type snapshotResponse struct {
	Balance int64     `json:"balance"`
	Limit   int64     `json:"limit"`
	AsOf    time.Time `json:"as_of"`
}

type extractEntryResponse struct {
	Amount      int64     `json:"amount"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

type extractResponse struct {
	Snapshot     snapshotResponse       `json:"snapshot"`
	Transactions []extractEntryResponse `json:"transactions"`
}

// accountID parses the path id. A non-numeric id is outside the known set,
// so it maps to not-found, same as an out-of-range numeric one.
func accountID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *Handler) ApplyTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(r)
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "account not found")
		return
	}

	var req transactionRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}

	snap, err := h.svc.Apply(r.Context(), id, req.Amount, ledger.Kind(req.Kind), req.Description)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, transactionResponse{Balance: snap.Balance, Limit: snap.Limit})
}

func (h *Handler) GetExtract(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(r)
	if !ok {
		httputil.WriteError(w, http.StatusNotFound, "account not found")
		return
	}

	ext, err := h.svc.Extract(r.Context(), id)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}

	entries := make([]extractEntryResponse, 0, len(ext.Transactions))
	for _, e := range ext.Transactions {
		entries = append(entries, extractEntryResponse{
			Amount:      e.Amount,
			Kind:        string(e.Kind),
			Description: e.Description,
			At:          e.At,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, extractResponse{
		Snapshot: snapshotResponse{
			Balance: ext.Snapshot.Balance,
			Limit:   ext.Snapshot.Limit,
			AsOf:    ext.Snapshot.AsOf,
		},
		Transactions: entries,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			logger.Log.Error("health check failed", zap.Error(err))
			httputil.WriteError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		httputil.WriteError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidKind),
		errors.Is(err, ledger.ErrInvalidDescription),
		errors.Is(err, ledger.ErrOverdraftRejected),
		errors.Is(err, ledger.ErrNoHistory):
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Log.Error("ledger operation failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
