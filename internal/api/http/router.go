package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Haianh25/quanlychungcu-sub001/internal/observability"
)

// NewRouter wires the HTTP surface: engine triggers, bill reads,
// payment confirmation, the notification inbox, health, and metrics.
func NewRouter(billing *BillingHandler, notifications *NotificationHandler, registry *prometheus.Registry) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	r.Handle("/metrics", observability.Handler(registry)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/billing/generate", billing.HandleGenerate).Methods(http.MethodPost)
	api.HandleFunc("/billing/escalate", billing.HandleEscalate).Methods(http.MethodPost)
	api.HandleFunc("/occupancies", billing.HandleMoveIn).Methods(http.MethodPost)

	api.HandleFunc("/residents/{id:[0-9]+}/bills", billing.HandleListBills).Methods(http.MethodGet)
	api.HandleFunc("/bills/{id:[0-9]+}", billing.HandleGetBill).Methods(http.MethodGet)
	api.HandleFunc("/bills/{id:[0-9]+}/pay", billing.HandlePayBill).Methods(http.MethodPost)

	api.HandleFunc("/residents/{id:[0-9]+}/notifications", notifications.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/residents/{id:[0-9]+}/notifications/{noteID:[0-9]+}/read", notifications.HandleMarkRead).Methods(http.MethodPost)

	return r
}
