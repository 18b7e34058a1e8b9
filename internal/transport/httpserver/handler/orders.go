package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	orderdomain "community-grocery-go/internal/domain/order"
)

type orderItemRequest struct {
	Article  string `json:"article" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	Items        []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	Community    string             `json:"community" validate:"required"`
	DeliveryDate string             `json:"deliveryDate" validate:"required"`
}

type orderItemResponse struct {
	Article   string  `json:"article"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type orderResponse struct {
	ID           string              `json:"id"`
	User         string              `json:"user"`
	Community    string              `json:"community"`
	Items        []orderItemResponse `json:"items"`
	TotalAmount  float64             `json:"totalAmount"`
	DeliveryDate time.Time           `json:"deliveryDate"`
	Status       orderdomain.Status  `json:"status"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	deliveryDate, err := parseDeliveryDate(req.DeliveryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	args := []any{"user_id", user.ID, "community_id", req.Community}
	if !isUUID(req.Community) {
		h.writeOrderError(w, r, "orders.create", orderdomain.ErrCommunityNotFound, args...)
		return
	}

	items := make([]orderdomain.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		if !isUUID(item.Article) {
			h.writeOrderError(w, r, "orders.create", fmt.Errorf("%w: %s", orderdomain.ErrPriceNotFound, item.Article), args...)
			return
		}
		items = append(items, orderdomain.ItemInput{ArticleID: item.Article, Quantity: item.Quantity})
	}

	order, err := h.Orders.CreateOrder(r.Context(), orderdomain.CreateInput{
		UserID:       user.ID,
		CommunityID:  req.Community,
		Items:        items,
		DeliveryDate: deliveryDate,
	})
	if err != nil {
		h.writeOrderError(w, r, "orders.create", err, args...)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	orders, err := h.Orders.ListOrders(r.Context(), user.ID)
	if err != nil {
		h.writeOrderError(w, r, "orders.list", err, "user_id", user.ID)
		return
	}

	response := make([]orderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, toOrderResponse(&orders[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	orderID, ok := h.orderParam(w, r, "orders.get")
	if !ok {
		return
	}
	order, err := h.Orders.GetOrder(r.Context(), orderID, user.ID)
	if err != nil {
		h.writeOrderError(w, r, "orders.get", err, "order_id", orderID, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handlers) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	orderID, ok := h.orderParam(w, r, "orders.delete")
	if !ok {
		return
	}
	if err := h.Orders.DeleteOrder(r.Context(), orderID, user.ID); err != nil {
		h.writeOrderError(w, r, "orders.delete", err, "order_id", orderID, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "order deleted"})
}

func (h *Handlers) orderParam(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	orderID, valid := pathID(r)
	if !valid {
		h.writeOrderError(w, r, op, orderdomain.ErrOrderNotFound, "order_id", orderID)
	}
	return orderID, valid
}

func (h *Handlers) writeOrderError(w http.ResponseWriter, r *http.Request, op string, err error, args ...any) {
	log := h.logger(r.Context())
	switch {
	case errors.Is(err, orderdomain.ErrOrderNotFound):
		log.BusinessError(op+": order not found", err, args...)
		writeError(w, http.StatusNotFound, "order_not_found", "order not found")
	case errors.Is(err, orderdomain.ErrCommunityNotFound):
		log.BusinessError(op+": community not found", err, args...)
		writeError(w, http.StatusNotFound, "community_not_found", "community not found")
	case errors.Is(err, orderdomain.ErrPriceNotFound):
		log.BusinessError(op+": price lookup failed", err, args...)
		writeError(w, http.StatusBadRequest, err.Error(), "failed to create order")
	case errors.Is(err, orderdomain.ErrNoItems),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrArticleRequired),
		errors.Is(err, orderdomain.ErrDeliveryDateRequired):
		log.BusinessError(op+": invalid input", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		log.InternalError(op+": failed", err, args...)
		writeInternal(w, "internal error", err)
	}
}

func toOrderResponse(order *orderdomain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			Article:   item.ArticleID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return orderResponse{
		ID:           order.ID,
		User:         order.UserID,
		Community:    order.CommunityID,
		Items:        items,
		TotalAmount:  order.TotalAmount,
		DeliveryDate: order.DeliveryDate,
		Status:       order.Status,
		CreatedAt:    order.CreatedAt,
	}
}
