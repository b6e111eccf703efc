package app

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bioauth/config"
	"bioauth/database"
	"bioauth/handler"
	"bioauth/middleware"
	"bioauth/usecase"
	"bioauth/utils"
)

// Services bundles the usecase layer the router dispatches to.
type Services struct {
	Users     *usecase.UserService
	Sessions  *usecase.SessionService
	Telemetry *usecase.TelemetryService
	Exports   *usecase.ExportService
	Admin     *usecase.AdminService
}

func NewServices(cfg *config.Config, store *database.Store, clock usecase.Clock) *Services {
	return &Services{
		Users:     usecase.NewUserService(store, clock, cfg.RequireOldPassword),
		Sessions:  usecase.NewSessionService(store, clock),
		Telemetry: usecase.NewTelemetryService(store, clock, cfg.StrictMode),
		Exports:   usecase.NewExportService(store),
		Admin:     usecase.NewAdminService(store, cfg.StrictMode),
	}
}

func NewRouter(cfg *config.Config, svc *Services, logger *slog.Logger) *gin.Engine {
	utils.InitValidator()

	router := gin.New()
	router.Use(middleware.RequestTracingMiddleware(logger))
	router.Use(middleware.EnhancedRecoveryMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.RequestSizeLimiter(cfg.MaxBodyBytes))

	users := handler.NewUserHandler(svc.Users, svc.Sessions)
	telemetry := handler.NewTelemetryHandler(svc.Telemetry)
	exports := handler.NewExportHandler(svc.Exports)
	admin := handler.NewAdminHandler(svc.Admin)

	router.GET("/", admin.Home)

	router.POST("/register", users.Register)
	router.POST("/login", users.Login)
	router.POST("/forgot_password", users.ForgotPassword)

	router.POST("/collect_data", telemetry.Collect)
	router.POST("/authenticate", telemetry.Authenticate)

	router.GET("/export_csv", exports.ExportCSV)
	router.GET("/export_excel", exports.ExportExcel)

	router.POST("/clear_data", admin.ClearData)
	router.GET("/stats", admin.Stats)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
