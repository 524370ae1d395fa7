package api

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"pedidos/m/internal/invoice"
)

func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("dias")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "dias must be a positive integer")
			return
		}
		days = n
	}
	totals, err := h.svc.Reports.DailySalesTotals(r.Context(), days)
	if err != nil {
		respondServiceError(w, err, "unable to fetch daily sales")
		return
	}
	respondJSON(w, http.StatusOK, totals)
}

func (h *Handler) productsSold(w http.ResponseWriter, r *http.Request) {
	sold, err := h.svc.Reports.ProductsSoldOnDate(r.Context(), queryDate(r))
	if err != nil {
		respondServiceError(w, err, "unable to fetch products sold")
		return
	}
	respondJSON(w, http.StatusOK, sold)
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Reports.ClientStatement(r.Context(), pathParam(r, "cliente"), queryDate(r))
	if err != nil {
		respondServiceError(w, err, "unable to load client orders")
		return
	}
	doc := invoice.Document{Business: h.business, Statement: st}
	data, err := invoice.Render(doc)
	if errors.Is(err, invoice.ErrEmptyInvoice) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		respondServiceError(w, err, "pdf generation failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename()}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
