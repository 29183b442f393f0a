package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/atomic"

	"github.com/ray-remotestate/bistro/handlers"
	"github.com/ray-remotestate/bistro/middlewares"
	"github.com/ray-remotestate/bistro/models"
	"github.com/ray-remotestate/bistro/utils"
)

type Server struct {
	Router *mux.Router
	server *http.Server
	ready  *atomic.Bool
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

func SetupRoutes() *Server {
	svr := &Server{ready: atomic.NewBool(false)}

	router := mux.NewRouter()
	router.Use(middlewares.RequestLogger)

	router.HandleFunc("/health", svr.health).Methods("GET")
	router.HandleFunc("/register", handlers.Register).Methods("POST")
	router.HandleFunc("/login", handlers.Login).Methods("POST")
	router.HandleFunc("/refresh", handlers.RefreshToken).Methods("POST")

	// Catalog reads are public, registered ahead of the authenticated
	// subtree so unauthenticated GETs never hit the auth middleware.
	router.HandleFunc("/api/categories", handlers.ListCategories).Methods("GET")
	router.HandleFunc("/api/menu-items", handlers.ListMenuItems).Methods("GET")
	router.HandleFunc("/api/menu-items/{id}", handlers.GetMenuItem).Methods("GET")

	authRoutes := router.PathPrefix("/api").Subrouter()
	authRoutes.Use(middlewares.AuthMiddleware)

	authRoutes.HandleFunc("/logout", handlers.Logout).Methods("POST")

	authRoutes.HandleFunc("/categories", handlers.CreateCategory).Methods("POST")
	authRoutes.HandleFunc("/categories/{id}", handlers.UpdateCategory).Methods("PUT")
	authRoutes.HandleFunc("/categories/{id}", handlers.DeleteCategory).Methods("DELETE")
	authRoutes.HandleFunc("/menu-items", handlers.CreateMenuItem).Methods("POST")
	authRoutes.HandleFunc("/menu-items/{id}", handlers.UpdateMenuItem).Methods("PUT")
	authRoutes.HandleFunc("/menu-items/{id}", handlers.DeleteMenuItem).Methods("DELETE")

	authRoutes.HandleFunc("/cart", handlers.GetCart).Methods("GET")
	authRoutes.HandleFunc("/cart", handlers.AddToCart).Methods("POST")
	authRoutes.HandleFunc("/cart", handlers.ClearCart).Methods("DELETE")

	authRoutes.HandleFunc("/orders", handlers.ListOrders).Methods("GET")
	authRoutes.HandleFunc("/orders", handlers.CreateOrder).Methods("POST")
	authRoutes.HandleFunc("/orders/{id}", handlers.GetOrder).Methods("GET")
	authRoutes.HandleFunc("/orders/{id}", handlers.UpdateOrder).Methods("PUT", "PATCH")
	authRoutes.HandleFunc("/orders/{id}", handlers.DeleteOrder).Methods("DELETE")

	// manager only
	groups := authRoutes.PathPrefix("/groups").Subrouter()
	groups.Use(middlewares.RoleBasedMiddleware(models.RoleManager))

	groups.HandleFunc("/{group}/users", handlers.ListGroupUsers).Methods("GET")
	groups.HandleFunc("/{group}/users", handlers.AddGroupUser).Methods("POST")
	groups.HandleFunc("/{group}/users", handlers.RemoveGroupUser).Methods("DELETE")

	svr.Router = router
	return svr
}

// MarkReady flips the readiness flag once migrations and seeding are done.
func (svr *Server) MarkReady() {
	svr.ready.Store(true)
}

func (svr *Server) health(w http.ResponseWriter, r *http.Request) {
	if !svr.ready.Load() {
		utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]bool{"alive": false})
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"alive": true})
}

func (svr *Server) Run(port string) error {
	svr.server = &http.Server{
		Addr:              ":" + port,
		Handler:           svr.Router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
