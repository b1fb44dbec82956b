//go:build wireinject
// +build wireinject

package di

import (
	"otms/config"
	"otms/infras/jwt"
	"otms/infras/mailer"
	"otms/infras/otel"
	"otms/infras/postgres"
	"otms/infras/redis"
	"otms/internal/notification"
	"otms/internal/realtime"
	"otms/permissions"
	"otms/shared/cache"
	"otms/transport/http"
	"otms/transport/http/middleware"
	"otms/transport/http/router"

	auditRepository "otms/internal/domains/audit/repository"
	auditService "otms/internal/domains/audit/service"
	doctorRepository "otms/internal/domains/doctor/repository"
	patientRepository "otms/internal/domains/patient/repository"
	surgeryRepository "otms/internal/domains/surgery/repository"
	surgeryService "otms/internal/domains/surgery/service"
	theatreRepository "otms/internal/domains/theatre/repository"
	trackingRepository "otms/internal/domains/tracking/repository"
	trackingService "otms/internal/domains/tracking/service"

	auditHandler "otms/internal/handlers/audit"
	surgeryHandler "otms/internal/handlers/surgery"
	trackingHandler "otms/internal/handlers/tracking"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	mailer.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var messaging = wire.NewSet(
	notification.NewQueue,
	realtime.NewHub,
)

var surgeryDomain = wire.NewSet(
	surgeryRepository.New,
	patientRepository.New,
	doctorRepository.New,
	theatreRepository.New,
	surgeryService.New,
)

var auditDomain = wire.NewSet(
	auditRepository.New,
	auditService.New,
)

var trackingDomain = wire.NewSet(
	trackingRepository.New,
	trackingService.New,
)

var domains = wire.NewSet(
	surgeryDomain,
	auditDomain,
	trackingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	surgeryHandler.New,
	trackingHandler.New,
	auditHandler.New,
	router.New,
)

func InitializeApp() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		messaging,
		domains,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}
