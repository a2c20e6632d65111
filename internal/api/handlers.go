package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/avitans/atelier/internal/models"
	"github.com/avitans/atelier/internal/service"
	"github.com/avitans/atelier/internal/store"
	"github.com/avitans/atelier/internal/uploads"
)

// Metrics
var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "atelier_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "atelier_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

// maxUploadBytes caps multipart request memory buffering.
const maxUploadBytes = 32 << 20

type Handler struct {
	store   *store.Store
	orders  *service.OrderService
	uploads *uploads.Storage
}

func NewHandler(s *store.Store, svc *service.OrderService, up *uploads.Storage) *Handler {
	return &Handler{store: s, orders: svc, uploads: up}
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

func (h *Handler) CreateClientHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/clients")
		return
	}
	if req.Name == "" {
		h.respondError(w, http.StatusUnprocessableEntity, "Name is required", "POST", "/clients")
		return
	}

	id, err := h.store.CreateClient(r.Context(), req.Name, req.Phone)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "POST", "/clients")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id}, "POST", "/clients")
}

func (h *Handler) ListClientsHandler(w http.ResponseWriter, r *http.Request) {
	clients, err := h.store.ListClients(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "GET", "/clients")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	h.respondJSON(w, http.StatusOK, clients, "GET", "/clients")
}

func (h *Handler) GetClientHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "GET", "/client/{id}")
	if !ok {
		return
	}

	client, err := h.store.GetClientWithLedger(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Client not found", "GET", "/client/{id}")
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error(), "GET", "/client/{id}")
		return
	}
	if client.Ledger == nil {
		client.Ledger = []models.LedgerEntry{}
	}
	h.respondJSON(w, http.StatusOK, client, "GET", "/client/{id}")
}

func (h *Handler) PostPaymentHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/client/{id}/payment"))
	defer timer.ObserveDuration()

	id, ok := h.pathID(w, r, "POST", "/client/{id}/payment")
	if !ok {
		return
	}

	var req models.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/client/{id}/payment")
		return
	}
	if req.Amount == 0 {
		h.respondError(w, http.StatusUnprocessableEntity, "Non-zero amount required", "POST", "/client/{id}/payment")
		return
	}

	err := h.orders.PostPayment(r.Context(), id, req.Amount, req.Description, req.Method)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			h.respondError(w, http.StatusNotFound, "Client not found", "POST", "/client/{id}/payment")
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error(), "POST", "/client/{id}/payment")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"success": true}, "POST", "/client/{id}/payment")
}

func (h *Handler) CreateSeamstressHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSeamstressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/seamstresses")
		return
	}
	if req.Name == "" {
		h.respondError(w, http.StatusUnprocessableEntity, "Name is required", "POST", "/seamstresses")
		return
	}

	id, err := h.store.CreateSeamstress(r.Context(), req.Name)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "POST", "/seamstresses")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id}, "POST", "/seamstresses")
}

func (h *Handler) ListSeamstressesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListSeamstresses(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "GET", "/seamstresses")
		return
	}
	if list == nil {
		list = []models.Seamstress{}
	}
	h.respondJSON(w, http.StatusOK, list, "GET", "/seamstresses")
}

// CreateOrderHandler accepts a multipart order submission: client_id,
// seamstress_id and status fields plus optional fabric_photo and style_photo
// files.
func (h *Handler) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/orders"))
	defer timer.ObserveDuration()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed multipart body", "POST", "/orders")
		return
	}

	clientID, err := strconv.ParseInt(r.FormValue("client_id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "Valid client_id required", "POST", "/orders")
		return
	}
	seamstressID, err := strconv.ParseInt(r.FormValue("seamstress_id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "Valid seamstress_id required", "POST", "/orders")
		return
	}

	status := models.StatusReceived
	if raw := r.FormValue("status"); raw != "" {
		status, err = models.ParseStatus(raw)
		if err != nil {
			h.respondError(w, http.StatusUnprocessableEntity, err.Error(), "POST", "/orders")
			return
		}
	}

	fabricPhoto, err := h.saveUpload(r, "fabric_photo")
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "POST", "/orders")
		return
	}
	stylePhoto, err := h.saveUpload(r, "style_photo")
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "POST", "/orders")
		return
	}

	id, err := h.orders.CreateOrder(r.Context(), service.CreateOrderParams{
		ClientID:     clientID,
		SeamstressID: seamstressID,
		FabricPhoto:  fabricPhoto,
		StylePhoto:   stylePhoto,
		Status:       status,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidReference) {
			h.respondError(w, http.StatusUnprocessableEntity, "Unknown client or seamstress", "POST", "/orders")
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error(), "POST", "/orders")
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]any{"success": true, "id": id}, "POST", "/orders")
}

func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "GET", "/orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	h.respondJSON(w, http.StatusOK, orders, "GET", "/orders")
}

func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "GET", "/orders/{id}")
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Order not found", "GET", "/orders/{id}")
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error(), "GET", "/orders/{id}")
		return
	}
	h.respondJSON(w, http.StatusOK, order, "GET", "/orders/{id}")
}

func (h *Handler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/orders/{id}/status"))
	defer timer.ObserveDuration()

	id, ok := h.pathID(w, r, "POST", "/orders/{id}/status")
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/orders/{id}/status")
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, req.Status); err != nil {
		h.respondOrderError(w, err, "POST", "/orders/{id}/status")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"success": true}, "POST", "/orders/{id}/status")
}

func (h *Handler) UpdateOrderHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/orders/{id}/update"))
	defer timer.ObserveDuration()

	id, ok := h.pathID(w, r, "POST", "/orders/{id}/update")
	if !ok {
		return
	}

	var req models.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed JSON body", "POST", "/orders/{id}/update")
		return
	}
	if req.Price <= 0 {
		h.respondError(w, http.StatusUnprocessableEntity, "Positive price required", "POST", "/orders/{id}/update")
		return
	}

	if err := h.orders.UpdateOrder(r.Context(), id, req.Status, req.Price); err != nil {
		h.respondOrderError(w, err, "POST", "/orders/{id}/update")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"success": true}, "POST", "/orders/{id}/update")
}

func (h *Handler) ListOrderImagesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "GET", "/orders/{id}/images")
	if !ok {
		return
	}

	images, err := h.store.ListOrderImages(r.Context(), id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "GET", "/orders/{id}/images")
		return
	}
	if images == nil {
		images = []models.OrderImage{}
	}
	h.respondJSON(w, http.StatusOK, images, "GET", "/orders/{id}/images")
}

func (h *Handler) ListOrderHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "GET", "/orders/{id}/history")
	if !ok {
		return
	}

	history, err := h.store.ListOrderHistory(r.Context(), id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "GET", "/orders/{id}/history")
		return
	}
	if history == nil {
		history = []models.StatusHistoryEntry{}
	}
	h.respondJSON(w, http.StatusOK, history, "GET", "/orders/{id}/history")
}

// UploadImageHandler attaches one more reference photo (field "image") to an
// existing order.
func (h *Handler) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/orders/{id}/upload"))
	defer timer.ObserveDuration()

	id, ok := h.pathID(w, r, "POST", "/orders/{id}/upload")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.respondError(w, http.StatusBadRequest, "Malformed multipart body", "POST", "/orders/{id}/upload")
		return
	}

	filename, err := h.saveUpload(r, "image")
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "POST", "/orders/{id}/upload")
		return
	}
	if filename == "" {
		h.respondError(w, http.StatusBadRequest, "Image file required", "POST", "/orders/{id}/upload")
		return
	}

	if err := h.orders.AttachImage(r.Context(), id, filename); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			h.respondError(w, http.StatusNotFound, "Order not found", "POST", "/orders/{id}/upload")
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error(), "POST", "/orders/{id}/upload")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"success": true, "filename": filename}, "POST", "/orders/{id}/upload")
}

// saveUpload stores the named multipart file if present, returning the stored
// filename or "" when the field was not sent.
func (h *Handler) saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()
	return h.uploads.Save(field, header.Filename, file)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, method, endpoint string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid id", method, endpoint)
		return 0, false
	}
	return id, true
}

func (h *Handler) respondOrderError(w http.ResponseWriter, err error, method, endpoint string) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		h.respondError(w, http.StatusNotFound, "Order not found", method, endpoint)
	case errors.Is(err, service.ErrInvalidStatus):
		h.respondError(w, http.StatusUnprocessableEntity, "Invalid order status", method, endpoint)
	default:
		h.respondError(w, http.StatusInternalServerError, err.Error(), method, endpoint)
	}
}

// Helpers
func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload any, method, endpoint string) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": msg}, method, endpoint)
}
