package api

import (
	"log"
	"net/http"

	"pedidos/m/internal/service"
)

type placeOrderResponse struct {
	successResponse
	ID int64 `json:"id"`
}

type checkoutResponse struct {
	successResponse
	IDs []int64 `json:"ids"`
}

func (h *Handler) placeOrderLine(w http.ResponseWriter, r *http.Request) {
	var req service.OrderInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.svc.Orders.PlaceOrderLine(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "unable to place order")
		return
	}
	respondJSON(w, http.StatusCreated, placeOrderResponse{
		successResponse: successResponse{Success: true, Message: "order placed"},
		ID:              id,
	})
}

func (h *Handler) placeCheckout(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	ids, err := h.svc.Orders.PlaceOrder(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "unable to place order")
		return
	}
	respondJSON(w, http.StatusCreated, checkoutResponse{
		successResponse: successResponse{Success: true, Message: "order placed"},
		IDs:             ids,
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.ListOrdersForDate(r.Context(), queryDate(r))
	if err != nil {
		respondServiceError(w, err, "unable to list orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) listClientsForDate(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.Orders.ListClientsForDate(r.Context(), queryDate(r))
	if err != nil {
		respondServiceError(w, err, "unable to list clients")
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func (h *Handler) listClientOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.Orders.ListOrdersForClientOnDate(r.Context(), pathParam(r, "cliente"), queryDate(r))
	if err != nil {
		respondServiceError(w, err, "unable to list orders")
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) editOrderLine(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	var req service.OrderUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Orders.EditOrderLine(r.Context(), id, req); err != nil {
		respondServiceError(w, err, "unable to update order")
		return
	}
	log.Printf("order %d updated by user %d", id, currentUserID(r))
	respondSuccess(w, http.StatusOK, "order updated")
}

func (h *Handler) deleteOrderLine(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	if err := h.svc.Orders.DeleteOrderLine(r.Context(), id); err != nil {
		respondServiceError(w, err, "unable to delete order")
		return
	}
	log.Printf("order %d deleted by user %d", id, currentUserID(r))
	respondSuccess(w, http.StatusOK, "order deleted")
}
