package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eugenenazirov/binpack/internal/binpack"
	"github.com/eugenenazirov/binpack/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires solver and storage dependencies into HTTP handlers.
type Handler struct {
	solver   binpack.Solver
	storage  storage.Storage
	validate *validator.Validate
	maxItems int

	clock func() time.Time

	mu             sync.RWMutex
	itemsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMaxItems caps the number of items a single request may solve.
func WithMaxItems(maxItems int) HandlerOption {
	return func(h *Handler) {
		if maxItems > 0 {
			h.maxItems = maxItems
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(solver binpack.Solver, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		solver:   solver,
		storage:  store,
		validate: validator.New(),
		maxItems: storage.DefaultMaxItems,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.itemsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetItems(w http.ResponseWriter, r *http.Request) {
	_ = r
	items, err := h.storage.GetItems()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := itemsResponse{
		Items:     items,
		UpdatedAt: h.currentItemsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutItems(w http.ResponseWriter, r *http.Request) {
	var req itemsRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.storage.SetItems(req.Items); err != nil {
		if errors.Is(err, storage.ErrInvalidItems) || errors.Is(err, storage.ErrTooManyItems) {
			writeError(w, http.StatusBadRequest, "Invalid items", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markItemsUpdated()

	items, err := h.storage.GetItems()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := itemsResponse{
		Items:     items,
		UpdatedAt: h.currentItemsUpdatedAt(),
		Message:   "Items updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleFeasible(w http.ResponseWriter, r *http.Request) {
	var req feasibleRequest
	if !h.decode(w, r, &req) {
		return
	}
	items, ok := h.resolveItems(w, req.Items)
	if !ok {
		return
	}

	feasible, err := h.solver.Feasible(items, *req.Bins)
	if err != nil {
		writeSolverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, feasibleResponse{
		Items:    items,
		Bins:     *req.Bins,
		Feasible: feasible,
	})
}

func (h *Handler) handleMinBins(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if !h.decode(w, r, &req) {
		return
	}
	items, ok := h.resolveItems(w, req.Items)
	if !ok {
		return
	}

	start := time.Now()
	bins, err := h.solver.MinBins(items)
	elapsed := time.Since(start)
	if err != nil {
		writeSolverError(w, err)
		return
	}

	lower, err := binpack.LowerBound(items)
	if err != nil {
		writeSolverError(w, err)
		return
	}
	upper, err := binpack.UpperBound(items)
	if err != nil {
		writeSolverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, minBinsResponse{
		Items:             items,
		MinBins:           bins,
		LowerBound:        lower,
		UpperBound:        upper,
		CalculationTimeMs: elapsed.Milliseconds(),
	})
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if !h.decode(w, r, &req) {
		return
	}
	items, ok := h.resolveItems(w, req.Items)
	if !ok {
		return
	}

	start := time.Now()
	assignment, err := h.solver.Assign(items)
	elapsed := time.Since(start)
	if err != nil {
		writeSolverError(w, err)
		return
	}

	packing, err := binpack.Summarize(items, assignment)
	if err != nil {
		writeSolverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assignResponse{
		Items:             items,
		Assignment:        packing.Assignment,
		Bins:              packing.Bins,
		Loads:             packing.Loads,
		CalculationTimeMs: elapsed.Milliseconds(),
	})
}

// decode parses and validates the JSON body into dst, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", describeValidation(err))
		return false
	}
	return true
}

// resolveItems falls back to the stored working set when the request omits the
// items field and enforces the per-request item limit. An explicit empty list
// decodes to a non-nil slice and is solved as given.
func (h *Handler) resolveItems(w http.ResponseWriter, items []float64) ([]float64, bool) {
	if items == nil {
		stored, err := h.storage.GetItems()
		if err != nil {
			writeInternalError(w, err)
			return nil, false
		}
		items = stored
	}
	if len(items) > h.maxItems {
		details := fmt.Sprintf("got %d items, maximum is %d", len(items), h.maxItems)
		writeError(w, http.StatusBadRequest, "Too many items", details, "Split the order into smaller batches")
		return nil, false
	}
	return items, true
}

func (h *Handler) currentItemsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.itemsUpdatedAt
}

func (h *Handler) markItemsUpdated() {
	h.mu.Lock()
	h.itemsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func writeSolverError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, binpack.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid items", err.Error())
	case errors.Is(err, binpack.ErrNoSolution),
		errors.Is(err, binpack.ErrIncompleteAssignment),
		errors.Is(err, binpack.ErrInvalidAssignment):
		writeError(w, http.StatusInternalServerError, "Search invariant violated", err.Error())
	default:
		writeInternalError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
