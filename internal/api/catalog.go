package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"pedidos/m/internal/service"
)

const maxCSVBytes = 10 << 20

func (h *Handler) searchClients(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Clients.SearchClients(r.Context(), r.URL.Query().Get("buscar"))
	if err != nil {
		respondServiceError(w, err, "unable to search clients")
		return
	}
	respondJSON(w, http.StatusOK, names)
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.Clients.ListClients(r.Context())
	if err != nil {
		respondServiceError(w, err, "unable to list clients")
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Catalog.SearchProducts(r.Context(), r.URL.Query().Get("buscar"))
	if err != nil {
		respondServiceError(w, err, "unable to search products")
		return
	}
	respondJSON(w, http.StatusOK, names)
}

func (h *Handler) productCost(w http.ResponseWriter, r *http.Request) {
	cost, err := h.svc.Catalog.GetCost(r.Context(), pathParam(r, "nombre"))
	if err != nil {
		respondServiceError(w, err, "unable to fetch cost")
		return
	}
	respondJSON(w, http.StatusOK, map[string]float64{"costo": cost})
}

func (h *Handler) productStock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.svc.Catalog.GetStock(r.Context(), pathParam(r, "nombre"))
	if err != nil {
		respondServiceError(w, err, "unable to fetch stock")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"stock": stock})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Catalog.ListProducts(r.Context())
	if err != nil {
		respondServiceError(w, err, "unable to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) registerProduct(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.Catalog.RegisterProduct(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "unable to register product")
		return
	}
	if created {
		respondSuccess(w, http.StatusCreated, "product created")
		return
	}
	respondSuccess(w, http.StatusOK, "product updated")
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, service.RoleAdmin) {
		return
	}
	name := pathParam(r, "nombre")
	if err := h.svc.Catalog.DeleteProduct(r.Context(), name); err != nil {
		respondServiceError(w, err, "unable to delete product")
		return
	}
	log.Printf("product %q deleted by user %d", name, currentUserID(r))
	respondSuccess(w, http.StatusOK, "product deleted")
}

type csvImportRequest struct {
	CSV string `json:"csv"`
}

type csvImportResponse struct {
	successResponse
	service.ImportResult
}

// importCSV accepts the catalog either as a JSON {"csv": "..."} document or as
// a raw text/csv body.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCSVBytes)

	var source io.Reader
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "text/csv", "text/plain":
		source = r.Body
	default:
		var req csvImportRequest
		if err := decodeJSON(r, &req); err != nil {
			if !tooLarge(w, err) {
				respondError(w, http.StatusBadRequest, err.Error())
			}
			return
		}
		if strings.TrimSpace(req.CSV) == "" {
			respondError(w, http.StatusBadRequest, "csv is required")
			return
		}
		source = strings.NewReader(req.CSV)
	}

	res, err := h.svc.Catalog.ImportCSV(r.Context(), source)
	if err != nil {
		if !tooLarge(w, err) {
			respondServiceError(w, err, "unable to import catalog")
		}
		return
	}
	respondJSON(w, http.StatusOK, csvImportResponse{
		successResponse: successResponse{
			Success: true,
			Message: fmt.Sprintf("catalog imported: %d updated, %d created", res.Updated, res.Created),
		},
		ImportResult: res,
	})
}

// tooLarge reports an upload cut off by MaxBytesReader as 413.
func tooLarge(w http.ResponseWriter, err error) bool {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		return false
	}
	respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("csv exceeds %d bytes", mbe.Limit))
	return true
}
