package stub

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/chi/v5"

	"github.com/koyif/cardbank/internal/domain"
	"github.com/koyif/cardbank/pkg/dto"
	"github.com/koyif/cardbank/pkg/logger"
)

// Router serves the wire contract under /api. Admin routes require a
// bearer token carrying the ADMIN role, signed with the backend's key.
func (b *Backend) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/transaction", b.handleTransaction)
		r.Get("/customer/balance/{cardNumber}", b.handleBalance)
		r.Get("/customer/transactions/{cardNumber}", b.handleTransactions)

		r.Group(func(r chi.Router) {
			r.Use(b.withAdminAuth)
			r.Get("/admin/transactions", b.handleAdminTransactions)
			r.Get("/admin/cards", b.handleAdminCards)
		})
	})

	return r
}

func (b *Backend) handleTransaction(w http.ResponseWriter, r *http.Request) {
	var request dto.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Log.Warn("error while decoding a transaction request", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	writeJSON(w, b.Process(request))
}

func (b *Backend) handleBalance(w http.ResponseWriter, r *http.Request) {
	cardNumber := chi.URLParam(r, "cardNumber")

	balance, ok := b.CardBalance(cardNumber)
	if !ok {
		http.Error(w, "Card not found", http.StatusBadRequest)
		return
	}

	writeJSON(w, balance)
}

func (b *Backend) handleTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, b.CardTransactions(chi.URLParam(r, "cardNumber")))
}

func (b *Backend) handleAdminTransactions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, b.AllTransactions())
}

func (b *Backend) handleAdminCards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, b.AllCards())
}

// withAdminAuth verifies the session token and its role claim. This is the
// server-side enforcement the original POC lacked: a client-side role check
// alone is routing, not authorization.
func (b *Backend) withAdminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			logger.Log.Warn("unauthorized request", logger.String("url", r.RequestURI))
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(b.privateKey), nil
		})
		if err != nil {
			logger.Log.Warn("unauthorized request", logger.String("url", r.RequestURI), logger.Error(err))
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		if role, _ := claims["role"].(string); role != string(domain.RoleAdmin) {
			logger.Log.Warn("forbidden request", logger.String("url", r.RequestURI))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Error("error while encoding response to JSON", logger.Error(err))
	}
}
