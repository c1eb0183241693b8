package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the chi router for the binding adapter: a health check,
// then an authenticated route group.
func NewRouter(signingSecret string, handlers *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(signingSecret))

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", handlers.CreateCustomer)
			r.Get("/", handlers.GetCustomers)
			r.Get("/{customerID}", handlers.GetCustomerDetails)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", handlers.CreateAccount)
			r.Get("/{accountRef}", handlers.GetAccountDetails)
			r.Get("/{accountRef}/transactions", handlers.GetTransactionHistory)
		})

		r.Post("/transfers", handlers.TransferMoney)
	})

	return r
}
