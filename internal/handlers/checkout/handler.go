package checkout

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kevin07696/intesa-checkout/internal/domain"
	"github.com/kevin07696/intesa-checkout/internal/services/payment"
	"github.com/kevin07696/intesa-checkout/pkg/encoding"
	"github.com/kevin07696/intesa-checkout/pkg/observability"
)

// Routes
const (
	RouteRedirect    = "/checkout/:order_id/redirect"
	RouteReturn      = "/checkout/:order_id/payment/return"
	RouteCancel      = "/checkout/:order_id/payment/cancel"
	RouteCreateOrder = "/api/v1/orders"
)

// Callback bodies are small url-encoded forms
const maxBodyBytes = 64 << 10

// CheckoutService prepares orders and redirects
type CheckoutService interface {
	CreateOrder(ctx context.Context, order domain.OrderRef) error
	PrepareRedirect(ctx context.Context, orderID string) (*payment.Redirect, error)
}

// CallbackService handles processor callbacks
type CallbackService interface {
	HandleReturn(ctx context.Context, orderID string, inbound domain.InboundFields) (*payment.CallbackResult, error)
	HandleCancel(ctx context.Context, orderID string, inbound domain.InboundFields) (*payment.CallbackResult, error)
}

// URLBuilder returns the absolute return and cancel URLs for an order
type URLBuilder func(orderID string) (returnURL, cancelURL string)

// Middleware wraps a handler
type Middleware func(http.Handler) http.Handler

// Handler serves the checkout pages, processor callbacks and order intake
type Handler struct {
	checkout  CheckoutService
	callbacks CallbackService
	urls      URLBuilder
	logger    *zap.Logger
}

// NewHandler creates a new checkout handler
func NewHandler(checkout CheckoutService, callbacks CallbackService, urls URLBuilder, logger *zap.Logger) *Handler {
	return &Handler{
		checkout:  checkout,
		callbacks: callbacks,
		urls:      urls,
		logger:    logger,
	}
}

// Register mounts the routes on router. orderAuth guards order intake; when it is nil
// the intake route is not mounted. callbackMiddleware wraps only the processor
// callbacks, outermost first.
func (h *Handler) Register(router *httprouter.Router, orderAuth Middleware, callbackMiddleware ...Middleware) {
	router.Handler(http.MethodGet, RouteRedirect, observability.HTTPMiddleware(RouteRedirect, h.wrap(h.redirect)))
	if orderAuth != nil {
		router.Handler(http.MethodPost, RouteCreateOrder, observability.HTTPMiddleware(RouteCreateOrder, orderAuth(h.wrap(h.createOrder))))
	} else {
		h.logger.Warn("No order intake authentication configured, intake route disabled")
	}

	for _, route := range []struct {
		path string
		fn   httprouter.Handle
	}{
		{RouteReturn, h.paymentReturn},
		{RouteCancel, h.paymentCancel},
	} {
		var next http.Handler = h.wrap(route.fn)
		for i := len(callbackMiddleware) - 1; i >= 0; i-- {
			next = callbackMiddleware[i](next)
		}
		router.Handler(http.MethodPost, route.path, observability.HTTPMiddleware(route.path, next))
	}
}

// wrap adapts an httprouter.Handle to http.Handler so net/http middleware can sit in front of it
func (h *Handler) wrap(fn httprouter.Handle) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, httprouter.ParamsFromContext(r.Context()))
	})
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	orderID := ps.ByName("order_id")

	redirect, err := h.checkout.PrepareRedirect(r.Context(), orderID)
	if err != nil {
		h.logger.Warn("Cannot prepare redirect", zap.String("order_id", orderID), zap.Error(err))
		h.renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := redirectTemplate.Execute(w, redirect); err != nil {
		h.logger.Error("Failed to render redirect form", zap.String("order_id", orderID), zap.Error(err))
	}
}

func (h *Handler) paymentReturn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.handleCallback(w, r, ps.ByName("order_id"), h.callbacks.HandleReturn)
}

func (h *Handler) paymentCancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.handleCallback(w, r, ps.ByName("order_id"), h.callbacks.HandleCancel)
}

type callbackFunc func(ctx context.Context, orderID string, inbound domain.InboundFields) (*payment.CallbackResult, error)

func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request, orderID string, handle callbackFunc) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("Malformed callback body", zap.String("order_id", orderID), zap.Error(err))
		http.Error(w, "malformed callback", http.StatusBadRequest)
		return
	}

	result, err := handle(r.Context(), orderID, domain.InboundFieldsFromForm(r.PostForm))
	if err != nil {
		h.logger.Error("Callback handling failed", zap.String("order_id", orderID), zap.Error(err))
		h.renderError(w, err)
		return
	}

	status := http.StatusOK
	if !result.Accepted {
		status = http.StatusBadRequest
	}
	h.renderResult(w, status, resultPage{
		Accepted:    result.Accepted,
		Message:     result.Message,
		Report:      result.Report,
		ContinueURL: result.ContinueURL,
	})
}

type createOrderRequest struct {
	OrderID               string `json:"order_id"`
	Total                 string `json:"total"`
	CustomerEmail         string `json:"customer_email"`
	CustomerLangcode      string `json:"customer_langcode"`
	CustomerAuthenticated bool   `json:"customer_authenticated"`
}

type createOrderResponse struct {
	OrderID      string `json:"order_id"`
	RedirectPath string `json:"redirect_path"`
	ReturnURL    string `json:"return_url"`
	CancelURL    string `json:"cancel_url"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Code: string(domain.ErrorCodeOrderInvalid), Message: "cannot read body"})
		return
	}

	var req createOrderRequest
	if err := encoding.DecodeJSON(body, &req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Code: string(domain.ErrorCodeOrderInvalid), Message: "invalid JSON: " + err.Error()})
		return
	}

	// Amounts arrive as strings so "10.00" keeps its scale
	total, err := decimal.NewFromString(strings.TrimSpace(req.Total))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Code: string(domain.ErrorCodeOrderInvalid), Message: "total must be a decimal string"})
		return
	}

	returnURL, cancelURL := h.urls(req.OrderID)
	order := domain.OrderRef{
		ID:                    req.OrderID,
		Total:                 total,
		ReturnURL:             returnURL,
		CancelURL:             cancelURL,
		CustomerEmail:         req.CustomerEmail,
		CustomerLangcode:      req.CustomerLangcode,
		CustomerAuthenticated: req.CustomerAuthenticated,
	}

	if err := h.checkout.CreateOrder(r.Context(), order); err != nil {
		h.writeOrderError(w, req.OrderID, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, createOrderResponse{
		OrderID:      order.ID,
		RedirectPath: strings.Replace(RouteRedirect, ":order_id", order.ID, 1),
		ReturnURL:    returnURL,
		CancelURL:    cancelURL,
	})
}

// writeOrderError reports client mistakes with their message. Anything else gets a
// generic body; the cause is only logged.
func (h *Handler) writeOrderError(w http.ResponseWriter, orderID string, err error) {
	var domainErr *domain.DomainError
	switch {
	case errors.Is(err, domain.ErrOrderExists):
		h.logger.Warn("Order already exists", zap.String("order_id", orderID))
		h.writeJSON(w, http.StatusConflict, errorResponse{Code: string(domain.ErrorCodeOrderExists), Message: "order already exists"})
	case domain.IsDomainError(err, domain.ErrorCodeOrderInvalid) && errors.As(err, &domainErr):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Code: string(domain.ErrorCodeOrderInvalid), Message: domainErr.Message})
	default:
		h.logger.Error("Failed to store order", zap.String("order_id", orderID), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Code: string(domain.ErrorCodeInternalError), Message: "internal error"})
	}
}

// renderError maps service errors to a failure page. Internal details stay in the logs.
func (h *Handler) renderError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "We could not process your payment. Please try again later."
	if domain.IsNotFoundError(err) {
		status = http.StatusNotFound
		message = "This order was not found or has expired. Please restart checkout."
	}
	h.renderResult(w, status, resultPage{Message: message})
}

func (h *Handler) renderResult(w http.ResponseWriter, status int, page resultPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := resultTemplate.Execute(w, page); err != nil {
		h.logger.Error("Failed to render result page", zap.Error(err))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := encoding.EncodeJSON(v)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
