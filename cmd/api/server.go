package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/checkout"
	"storefront/pkg/logger"
	"storefront/pkg/order"
	"storefront/pkg/otel"
)

const sessionCookie = "session_id"

type ctxKey int

const sessionKey ctxKey = 1

type server struct {
	log      *logger.Logger
	tracer   trace.Tracer
	catalog  catalog.Repository
	sessions *cart.Sessions
	checkout *checkout.Service
	orders   *order.Service
	secure   bool
}

func (s *server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.traceMiddleware)

	r.HandleFunc("/categories", s.listCategoriesHandler).Methods(http.MethodGet)
	r.HandleFunc("/products", s.listProductsHandler).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", s.getProductHandler).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/track", s.trackOrderHandler).Methods(http.MethodGet)

	sess := r.NewRoute().Subrouter()
	sess.Use(s.sessionMiddleware)
	sess.HandleFunc("/cart", s.getCartHandler).Methods(http.MethodGet)
	sess.HandleFunc("/cart", s.clearCartHandler).Methods(http.MethodDelete)
	sess.HandleFunc("/cart/items", s.addCartItemHandler).Methods(http.MethodPost)
	sess.HandleFunc("/cart/items/{id}", s.updateCartItemHandler).Methods(http.MethodPut)
	sess.HandleFunc("/cart/items/{id}", s.removeCartItemHandler).Methods(http.MethodDelete)
	sess.HandleFunc("/checkout", s.checkoutHandler).Methods(http.MethodPost)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	return r
}

func (s *server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.InjectTracing(r.Context(), s.tracer)
		ctx, span := otel.AddSpan(ctx, r.Method+" "+r.URL.Path,
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
		)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionMiddleware makes sure every cart request carries a session id,
// issuing a new cookie when the browser has none.
func (s *server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie(sessionCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				sid = c.Value
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				Expires:  time.Now().Add(30 * 24 * time.Hour),
				HttpOnly: true,
				Secure:   s.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey).(string)
	return sid
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
