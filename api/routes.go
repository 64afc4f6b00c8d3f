package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/philipcowcer-eng/LoadBalance/internal/config"
	"github.com/philipcowcer-eng/LoadBalance/internal/metrics"
	"github.com/philipcowcer-eng/LoadBalance/internal/service"
	"github.com/philipcowcer-eng/LoadBalance/internal/snapshot"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

// Deps are the collaborators the HTTP surface is built on.
type Deps struct {
	Config    *config.Config
	Service   *service.Service
	Snapshots *snapshot.Manager
	Version   string
	BuildTime string
}

func SetupRoutes(d Deps) *mux.Router {
	cfg := d.Config
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RecoveryMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware(cfg.AllowedOrigins))
	r.Use(ClientIPMiddleware(cfg.TrustProxy))

	// Handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(d.Service, cfg.JWTSecret, cfg.TokenDuration)
	engineers := NewEngineersHandler(d.Service)
	projects := NewProjectsHandler(d.Service)
	resources := NewResourcesHandler(d.Service)
	admin := NewAdminHandler(d.Service, d.Snapshots)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(d.Version, d.BuildTime)).Methods(http.MethodGet)
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods(http.MethodGet)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler()).Methods(http.MethodGet)
	}

	// API routes. Authentication is optional here; anonymous mutations are
	// attributed to the system actor.
	apiR := r.PathPrefix("/api").Subrouter()
	apiR.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authR := apiR.PathPrefix("/auth").Subrouter()
	limited := func(h http.HandlerFunc) http.Handler { return h }
	if cfg.RateLimit.Enabled {
		mw := RateLimitMiddleware(cfg.RateLimit.LoginPerMinute)
		limited = func(h http.HandlerFunc) http.Handler { return mw(h) }
	}
	authR.Handle("/register", limited(authHandler.Register)).Methods(http.MethodPost)
	authR.Handle("/login", limited(authHandler.Login)).Methods(http.MethodPost)
	authR.Handle("/me", RequireRole()(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)
	authR.Handle("/users", RequireRole(models.UserAdmin)(http.HandlerFunc(authHandler.Users))).Methods(http.MethodGet)

	// Engineers
	apiR.HandleFunc("/engineers", engineers.List).Methods(http.MethodGet)
	apiR.HandleFunc("/engineers", engineers.Create).Methods(http.MethodPost)
	apiR.HandleFunc("/engineers/{id}", engineers.Get).Methods(http.MethodGet)
	apiR.HandleFunc("/engineers/{id}", engineers.Replace).Methods(http.MethodPut)
	apiR.HandleFunc("/engineers/{id}", engineers.Delete).Methods(http.MethodDelete)
	apiR.HandleFunc("/engineers/{id}/allocations", engineers.Allocations).Methods(http.MethodGet)

	// Projects and their nested resources
	apiR.HandleFunc("/projects", projects.List).Methods(http.MethodGet)
	apiR.HandleFunc("/projects", projects.Create).Methods(http.MethodPost)
	apiR.HandleFunc("/projects/{id}", projects.Get).Methods(http.MethodGet)
	apiR.HandleFunc("/projects/{id}", projects.Replace).Methods(http.MethodPut)
	apiR.HandleFunc("/projects/{id}", projects.Patch).Methods(http.MethodPatch)
	apiR.HandleFunc("/projects/{id}/allocations", projects.Allocations).Methods(http.MethodGet)
	apiR.HandleFunc("/projects/{id}/allocations", projects.AddAllocation).Methods(http.MethodPost)
	apiR.HandleFunc("/projects/{id}/requirements", projects.Requirements).Methods(http.MethodGet)
	apiR.HandleFunc("/projects/{id}/requirements", projects.AddRequirement).Methods(http.MethodPost)
	apiR.HandleFunc("/projects/{id}/devices", projects.Devices).Methods(http.MethodGet)
	apiR.HandleFunc("/projects/{id}/devices", projects.AddDevice).Methods(http.MethodPost)
	apiR.HandleFunc("/projects/{id}/rid-log", projects.Rid).Methods(http.MethodGet)
	apiR.HandleFunc("/projects/{id}/rid-log", projects.AddRid).Methods(http.MethodPost)
	apiR.HandleFunc("/projects/{id}/impact-log", projects.Impact).Methods(http.MethodGet)

	// Resources addressed by their own id
	apiR.HandleFunc("/allocations", resources.ListAllocations).Methods(http.MethodGet)
	apiR.HandleFunc("/allocations", resources.CreateAllocation).Methods(http.MethodPost)
	apiR.HandleFunc("/allocations/{id}", resources.PatchAllocation).Methods(http.MethodPatch)
	apiR.HandleFunc("/allocations/{id}", resources.DeleteAllocation).Methods(http.MethodDelete)
	apiR.HandleFunc("/requirements", resources.ListRequirements).Methods(http.MethodGet)
	apiR.HandleFunc("/requirements/{id}", resources.PatchRequirement).Methods(http.MethodPatch)
	apiR.HandleFunc("/requirements/{id}", resources.DeleteRequirement).Methods(http.MethodDelete)
	apiR.HandleFunc("/devices", resources.ListDevices).Methods(http.MethodGet)
	apiR.HandleFunc("/devices/{id}", resources.PatchDevice).Methods(http.MethodPatch)
	apiR.HandleFunc("/devices/{id}", resources.DeleteDevice).Methods(http.MethodDelete)
	apiR.HandleFunc("/rid-log/{id}", resources.PatchRid).Methods(http.MethodPatch)
	apiR.HandleFunc("/rid-log/{id}", resources.DeleteRid).Methods(http.MethodDelete)

	// Export is open like the other reads.
	apiR.HandleFunc("/export/workbook.xlsx", admin.Workbook).Methods(http.MethodGet)
	apiR.HandleFunc("/export/{kind}.csv", admin.Export).Methods(http.MethodGet)

	auditR := apiR.PathPrefix("/audit").Subrouter()
	auditR.Use(RequireRole(models.UserAdmin, models.UserResourceManager))
	auditR.HandleFunc("/logs", admin.AuditLogs).Methods(http.MethodGet)

	importR := apiR.PathPrefix("/import").Subrouter()
	importR.Use(RequireRole(models.UserAdmin))
	importR.HandleFunc("/{kind}", admin.Import).Methods(http.MethodPost)

	snapR := apiR.PathPrefix("/snapshots").Subrouter()
	snapR.Use(RequireRole(models.UserAdmin))
	snapR.HandleFunc("", admin.ListSnapshots).Methods(http.MethodGet)
	snapR.HandleFunc("/create", admin.CreateSnapshot).Methods(http.MethodPost)
	snapR.HandleFunc("/restore/{filename}", admin.RestoreSnapshot).Methods(http.MethodPost)

	// Preflight requests must reach the CORS middleware, which only runs
	// on matched routes.
	r.MatcherFunc(isPreflight).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func isPreflight(r *http.Request, _ *mux.RouteMatch) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}
