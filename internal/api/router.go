package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter wires all API routes plus the static dashboard and the uploads
// mount. staticDir holds the dashboard UI, uploadsDir the stored images.
func NewRouter(h *Handler, logger zerolog.Logger, staticDir, uploadsDir string) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger(logger))

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.HealthCheckHandler).Methods("GET")

	r.HandleFunc("/clients", h.CreateClientHandler).Methods("POST")
	r.HandleFunc("/clients", h.ListClientsHandler).Methods("GET")
	r.HandleFunc("/seamstresses", h.CreateSeamstressHandler).Methods("POST")
	r.HandleFunc("/seamstresses", h.ListSeamstressesHandler).Methods("GET")
	r.HandleFunc("/client/{id}", h.GetClientHandler).Methods("GET")
	r.HandleFunc("/client/{id}/payment", h.PostPaymentHandler).Methods("POST")

	r.HandleFunc("/orders", h.CreateOrderHandler).Methods("POST")
	r.HandleFunc("/orders", h.ListOrdersHandler).Methods("GET")
	r.HandleFunc("/orders/{id}", h.GetOrderHandler).Methods("GET")
	r.HandleFunc("/orders/{id}/status", h.UpdateStatusHandler).Methods("POST")
	r.HandleFunc("/orders/{id}/update", h.UpdateOrderHandler).Methods("POST")
	r.HandleFunc("/orders/{id}/images", h.ListOrderImagesHandler).Methods("GET")
	r.HandleFunc("/orders/{id}/history", h.ListOrderHistoryHandler).Methods("GET")
	r.HandleFunc("/orders/{id}/upload", h.UploadImageHandler).Methods("POST")

	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))

	return r
}
