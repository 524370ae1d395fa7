package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pedidos/m/internal/config"
	"pedidos/m/internal/service"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userID"
	ctxRole   ctxKey = "role"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	svc            *service.Services
	secret         string
	zones          []string
	corsOrigins    []string
	business       string
	requestTimeout time.Duration
}

// New constructs a Handler.
func New(svc *service.Services, cfg config.Config) *Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Handler{
		svc:            svc,
		secret:         cfg.Secret,
		zones:          cfg.Zones,
		corsOrigins:    cfg.CORSOrigins,
		business:       cfg.BusinessName,
		requestTimeout: timeout,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))
	r.Use(middleware.Timeout(h.requestTimeout))

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.ping)
		r.Get("/zonas", h.listZones)
		r.Post("/auth/login", h.login)

		r.Get("/clientes", h.searchClients)
		r.Get("/clientes/lista", h.listClients)

		r.Route("/productos", func(r chi.Router) {
			r.Get("/", h.searchProducts)
			r.Post("/", h.registerProduct)
			r.Get("/lista", h.listProducts)
			r.Get("/costo/{nombre}", h.productCost)
			r.Get("/stock/{nombre}", h.productStock)
			r.Post("/csv", h.importCSV)
			r.With(h.authMiddleware).Delete("/{nombre}", h.deleteProduct)
		})

		r.Route("/pedidos", func(r chi.Router) {
			r.Post("/", h.placeOrderLine)
			r.Get("/", h.listOrders)
			r.Post("/lote", h.placeCheckout)
			r.Get("/clientes", h.listClientsForDate)
			r.Get("/cliente/{cliente}", h.listClientOrders)
			r.Group(func(protected chi.Router) {
				protected.Use(h.authMiddleware)
				protected.Put("/{id}", h.editOrderLine)
				protected.Delete("/{id}", h.deleteOrderLine)
			})
		})

		r.Route("/reportes", func(r chi.Router) {
			r.Get("/ventas", h.dailySales)
			r.Get("/productos", h.productsSold)
		})

		r.Get("/facturas/{cliente}", h.invoicePDF)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		log.Printf("health check failed: %v", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) listZones(w http.ResponseWriter, r *http.Request) {
	zones := h.zones
	if zones == nil {
		zones = []string{}
	}
	respondJSON(w, http.StatusOK, zones)
}

// Helpers

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// pathParam returns the decoded URL parameter; names may carry escaped slashes.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
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

func respondSuccess(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, successResponse{Success: true, Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps a service error to its HTTP status. Store failures
// are logged and reported as 500 with the underlying message.
func respondServiceError(w http.ResponseWriter, err error, action string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve) && len(ve.Violations) > 0:
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Details: ve.Violations})
	case service.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	default:
		log.Printf("%s: %v", action, err)
		respondError(w, http.StatusInternalServerError, action+": "+err.Error())
	}
}

func queryDate(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("fecha"))
}
