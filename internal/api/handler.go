package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"

	"homeovault/m/internal/inventory"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	svc       *inventory.Service
	staticDir string
}

// New constructs a Handler.
func New(svc *inventory.Service, staticDir string) *Handler {
	return &Handler{svc: svc, staticDir: staticDir}
}

// Router wires up the HTTP API and the static frontend.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // local single-store deployment
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.listMedicines)
			r.Post("/", h.createMedicine)
			r.Delete("/{id}", h.deleteMedicine)
		})
		r.Post("/transaction", h.createTransaction)
		r.Get("/history", h.history)
		r.Get("/export", h.exportCSV)
	})

	h.mountStatic(r)

	return r
}

// mountStatic serves the frontend bundle at the root path, falling back to
// index.html so the dashboard works on any path.
func (h *Handler) mountStatic(r *chi.Mux) {
	if _, err := os.Stat(h.staticDir); err != nil {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusNotFound, "frontend bundle not found")
		})
		return
	}

	fileServer := http.FileServer(http.Dir(h.staticDir))
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		full := filepath.Join(h.staticDir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(full); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

type createMedicineRequest struct {
	MedicineName      string          `json:"medicine_name"`
	Potency           string          `json:"potency"`
	Form              string          `json:"form"`
	BottleSize        string          `json:"bottle_size"`
	Manufacturer      string          `json:"manufacturer"`
	BatchNumber       string          `json:"batch_number"`
	ExpiryDate        string          `json:"expiry_date"`
	MRP               decimal.Decimal `json:"mrp"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	Quantity          int64           `json:"quantity"`
	LowStockThreshold *int64          `json:"low_stock_threshold,omitempty"`
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req createMedicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.MedicineName == "" || req.Potency == "" || req.BatchNumber == "" {
		respondError(w, http.StatusBadRequest, "medicine_name, potency and batch_number are required")
		return
	}

	medicine, err := h.svc.CreateMedicine(r.Context(), inventory.CreateParams{
		MedicineName:      req.MedicineName,
		Potency:           req.Potency,
		Form:              req.Form,
		BottleSize:        req.BottleSize,
		Manufacturer:      req.Manufacturer,
		BatchNumber:       req.BatchNumber,
		ExpiryDate:        req.ExpiryDate,
		MRP:               req.MRP,
		PurchasePrice:     req.PurchasePrice,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, medicine)
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.svc.ListMedicines(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	if err := h.svc.DeleteMedicine(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Medicine deleted",
	})
}

type transactionRequest struct {
	MedicineID   int64   `json:"medicine_id"`
	ChangeAmount int64   `json:"change_amount"`
	ActionType   string  `json:"action_type"`
	Note         *string `json:"note"`
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	newQuantity, err := h.svc.ApplyTransaction(r.Context(), req.MedicineID, req.ChangeAmount, req.ActionType, req.Note)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"new_quantity": newQuantity,
	})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.History(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory_export.csv"`)
	if err := h.svc.ExportCSV(r.Context(), w); err != nil {
		// Headers may already be written; log and abandon the response.
		log.Printf("export failed: %v", err)
	}
}

// Helpers

// respondServiceError maps the inventory error taxonomy to HTTP statuses.
// Unexpected errors surface as a generic 500 without internal detail.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, inventory.ErrInvalidPrice),
		errors.Is(err, inventory.ErrInvalidDate),
		errors.Is(err, inventory.ErrDuplicateSKU),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrExpiredMedicine):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
