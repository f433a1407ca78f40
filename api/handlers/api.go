package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/caseworks/appraisal-case-api/api"
	"github.com/caseworks/appraisal-case-api/config"
	"github.com/caseworks/appraisal-case-api/databases"
	"github.com/caseworks/appraisal-case-api/engine"
	"github.com/caseworks/appraisal-case-api/models"
)

// App stores the router and the engine wiring, so it can be reused
type App struct {
	Router      *mux.Router
	Config      config.Config
	Store       *engine.Store
	Broadcaster *engine.Broadcaster
	Coordinator *databases.Coordinator
	dbHelper    databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.Auth{Conf: &a.Config}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	c := Case{Store: a.Store}
	ing := Ingest{Store: a.Store}
	watch := Watch{Store: a.Store, Broadcaster: a.Broadcaster}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	// the watch route is long-lived and skips the request timeout
	timeout := api.TimeoutMiddleware(15 * time.Second)

	apiCreate.Handle("/case", timeout(api.Middleware(http.HandlerFunc(c.CaseHandler)))).Methods("GET")
	apiCreate.Handle("/case/ingest", timeout(api.Middleware(http.HandlerFunc(ing.IngestHandler)))).Methods("POST")
	apiCreate.Handle("/case/field", timeout(api.Middleware(http.HandlerFunc(c.UpdateFieldHandler)))).Methods("PUT")
	apiCreate.Handle("/case/alerts", timeout(api.Middleware(http.HandlerFunc(c.AlertsHandler)))).Methods("GET")
	apiCreate.Handle("/case/reset", timeout(api.Middleware(http.HandlerFunc(c.ResetHandler)))).Methods("POST")
	apiCreate.Handle("/case/watch", api.Middleware(http.HandlerFunc(watch.WatchHandler))).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the databases and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("appraisal-case-api has connected to the database")

	redisClient, err := databases.NewRedisClient(&a.Config)
	if err != nil {
		zap.S().With(err).Error("failed to create redis client")
		return err
	}

	primary := databases.NewRedisTier("primary", redisClient)
	backup := databases.NewRedisTier("backup", redisClient)
	mirror := databases.NewCaseSnapshotDatabase(a.dbHelper)
	a.Coordinator = databases.NewCoordinator(primary, backup, mirror, a.Config.CaseKey)

	a.Broadcaster = engine.NewBroadcaster(engine.DefaultDebounce)
	a.Store = engine.NewStore(context.Background(), a.Coordinator, a.Broadcaster, a.Config.CaseIDPrefix)

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
