package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/dairyadmin/internal/app"
	iauth "github.com/charlesng35/dairyadmin/internal/auth"
	"github.com/charlesng35/dairyadmin/internal/cache"
	"github.com/charlesng35/dairyadmin/internal/handlers"
	"github.com/charlesng35/dairyadmin/internal/middleware"
	"github.com/charlesng35/dairyadmin/internal/monitoring"
	"github.com/charlesng35/dairyadmin/internal/monitoring/checks"
	"github.com/charlesng35/dairyadmin/internal/permissions"
	"github.com/charlesng35/dairyadmin/internal/realtime"
	"github.com/charlesng35/dairyadmin/internal/security"
	"github.com/charlesng35/dairyadmin/internal/services"
)

// Dependencies are the long-lived collaborators the router is built from.
// Cache, Hub and Health are optional.
type Dependencies struct {
	DB     *gorm.DB
	JWT    *iauth.JWTService
	Config *app.Config
	Cache  cache.Store
	Hub    *realtime.Hub
	Health *monitoring.HealthManager
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	cfg := deps.Config

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	if cfg.Server.RateLimit.Enabled {
		r.Use(middleware.RateLimit(middleware.NewCacheRateStore(deps.Cache), cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))
	}

	health := deps.Health
	if health == nil {
		health = monitoring.NewHealthManager()
		health.RegisterLiveness(monitoring.Static("server"))
		health.RegisterReadiness(checks.Database(deps.DB, 0))
	}
	registerHealthRoutes(r, handlers.NewHealthHandler(health))

	stack, err := newServiceStack(deps)
	if err != nil {
		return nil, err
	}

	checker, err := permissions.NewChecker(deps.DB)
	if err != nil {
		return nil, err
	}

	authSvc, err := services.NewAuthService(deps.DB, deps.JWT, checker, stack.audit)
	if err != nil {
		return nil, err
	}

	api := r.Group("/api")
	registerPublicAuthRoutes(api, handlers.NewAuthHandler(authSvc))

	protected := api.Group("")
	protected.Use(middleware.Auth(deps.JWT))

	pager := handlers.Pager{DefaultLimit: cfg.Pagination.DefaultLimit, MaxLimit: cfg.Pagination.MaxLimit}

	registerAuthRoutes(protected, handlers.NewAuthHandler(authSvc))
	registerRoleRoutes(protected, handlers.NewRoleHandler(stack.roles, pager), handlers.NewCategoryHandler(stack.categories, pager), checker)
	registerModuleRoutes(protected, handlers.NewModuleHandler(stack.modules, pager), handlers.NewPermissionHandler(stack.permissions), checker)
	registerHierarchyRoutes(protected, handlers.NewHierarchyHandler(stack.hierarchies, pager), checker)
	registerUserRoutes(protected, handlers.NewUserHandler(stack.users, pager), handlers.NewAssignmentHandler(stack.assignments), checker)
	registerMasterRoutes(protected, handlers.NewMasterHandler(stack.banks, stack.villages, stack.mccs, stack.mpps, stack.formSteps, pager), checker)
	registerMasterDataRoutes(protected, handlers.NewMasterDataHandler(stack.masterData), checker)
	registerReportRoutes(protected, handlers.NewReportHandler(stack.reports, stack.audit, security.NewAuditor(deps.DB, deps.JWT, cfg), pager), checker)
	registerRealtimeRoutes(protected, deps.Hub)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

// serviceStack groups the domain services shared by the route groups.
type serviceStack struct {
	audit       *services.AuditService
	categories  *services.CategoryService
	roles       *services.RoleService
	modules     *services.ModuleService
	permissions *services.PermissionService
	hierarchies *services.HierarchyService
	users       *services.UserService
	assignments *services.AssignmentService
	banks       *services.BankService
	villages    *services.VillageService
	mccs        *services.MCCService
	mpps        *services.MPPService
	formSteps   *services.FormStepService
	masterData  *services.MasterDataService
	reports     *services.ReportService
}

func newServiceStack(deps Dependencies) (*serviceStack, error) {
	var opts []services.Option
	if deps.Hub != nil {
		opts = append(opts, services.WithNotifier(deps.Hub))
	}

	db := deps.DB
	s := &serviceStack{}
	var err error

	if s.audit, err = services.NewAuditService(db); err != nil {
		return nil, err
	}
	if s.categories, err = services.NewCategoryService(db, s.audit, opts...); err != nil {
		return nil, err
	}
	if s.roles, err = services.NewRoleService(db, s.audit, opts...); err != nil {
		return nil, err
	}
	if s.modules, err = services.NewModuleService(db, s.audit, deps.Cache, deps.Config.Cache.ModuleTTL, opts...); err != nil {
		return nil, err
	}
	if s.permissions, err = services.NewPermissionService(db, s.audit, opts...); err != nil {
		return nil, err
	}
	if s.hierarchies, err = services.NewHierarchyService(db, s.audit, deps.Config.Hierarchy.MaxLevels, opts...); err != nil {
		return nil, err
	}
	if s.users, err = services.NewUserService(db, s.audit, opts...); err != nil {
		return nil, err
	}
	if s.assignments, err = services.NewAssignmentService(db, s.audit, opts...); err != nil {
		return nil, err
	}
	if s.banks, err = services.NewBankService(db, s.audit, opts...); err != nil {
		return nil, err
	}
	if s.villages, err = services.NewVillageService(db, s.audit, opts...); err != nil {
		return nil, err
	}
	if s.mccs, err = services.NewMCCService(db, s.audit, opts...); err != nil {
		return nil, err
	}
	if s.mpps, err = services.NewMPPService(db, s.audit, opts...); err != nil {
		return nil, err
	}
	if s.formSteps, err = services.NewFormStepService(db, s.audit, opts...); err != nil {
		return nil, err
	}
	if s.masterData, err = services.NewMasterDataService(s.banks, s.villages, s.mccs, s.mpps, s.audit, opts...); err != nil {
		return nil, err
	}
	if s.reports, err = services.NewReportService(db); err != nil {
		return nil, err
	}
	return s, nil
}
