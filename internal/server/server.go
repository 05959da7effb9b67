package server

import (
	"time"

	"backend-itinerary/internal/auth"
	"backend-itinerary/internal/config"
	"backend-itinerary/internal/experience"
	"backend-itinerary/internal/gazetteer"
	"backend-itinerary/internal/itinerary"
	"backend-itinerary/internal/metrics"
	"backend-itinerary/internal/notify"
	"backend-itinerary/internal/planner"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const metricsNamespace = "itinerary"

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Log     zerolog.Logger
	Metrics *metrics.Collector
	Notify  *notify.Hub
	Engine  *planner.Engine
	Store   *itinerary.Store
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, log zerolog.Logger) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	collector := metrics.NewCollector(metricsNamespace)
	loc := cfg.Location()

	opts := []planner.Option{
		planner.WithSettings(PlannerSettings(cfg)),
		planner.WithClock(planner.ClockFunc(func() time.Time { return time.Now().In(loc) })),
		planner.WithLogger(log.With().Str("component", "planner").Logger()),
		planner.WithMetrics(collector),
	}
	if cfg.PlannerSeed != 0 {
		opts = append(opts, planner.WithSeed(cfg.PlannerSeed))
	}

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      db,
		Redis:   redisClient,
		Log:     log,
		Metrics: collector,
		Notify:  notify.NewHub(redisClient, log.With().Str("component", "notify").Logger()),
		Engine:  planner.NewEngine(newCatalog(cfg, db, log), gazetteer.Default(), opts...),
		Store:   itinerary.NewStore(db, collector),
	}

	registerRoutes(s)
	return s
}

// newCatalog serves experiences from a YAML fixture when one is configured and
// from postgres otherwise, behind a snapshot cache when CATALOG_CACHE_TTL > 0.
func newCatalog(cfg config.Config, db *pgxpool.Pool, log zerolog.Logger) planner.Catalog {
	var source experience.Source = experience.NewService(db)
	if cfg.CatalogFixture != "" {
		exps, err := experience.LoadFixtureFile(cfg.CatalogFixture)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.CatalogFixture).Msg("catalog fixture not loaded, using postgres")
		} else {
			log.Info().Int("experiences", len(exps)).Str("path", cfg.CatalogFixture).Msg("serving catalog fixture")
			source = experience.NewStaticCatalog(exps)
		}
	}
	if cfg.CatalogCacheTTL > 0 {
		return experience.NewCachedCatalog(source, cfg.CatalogCacheTTL)
	}
	return source
}

// PlannerSettings overlays the configured thresholds on the planner defaults.
func PlannerSettings(cfg config.Config) planner.Settings {
	s := planner.DefaultSettings()
	if cfg.BudgetMaxPrice > 0 {
		s.BudgetMaxPrice = cfg.BudgetMaxPrice
	}
	if cfg.MidRangeMaxPrice > 0 {
		s.MidRangeMaxPrice = cfg.MidRangeMaxPrice
	}
	if cfg.NearbyRadiusKm > 0 {
		s.NearbyRadiusKm = cfg.NearbyRadiusKm
	}
	if cfg.ModerateRadiusKm > 0 {
		s.ModerateRadiusKm = cfg.ModerateRadiusKm
	}
	if cfg.SlotBufferMinutes > 0 {
		s.Buffer = time.Duration(cfg.SlotBufferMinutes) * time.Minute
	}
	if cfg.LateStartHour > 0 {
		s.LateStartHour = cfg.LateStartHour
	}
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(s.Metrics.Handler()))

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	handler := itinerary.NewHandler(s.Engine, s.Store, s.Notify, s.Log.With().Str("component", "itinerary").Logger())
	itinerary.RegisterRoutes(s.App.Group("/itineraries"), handler, jwtMiddleware)
	notify.RegisterRoutes(s.App.Group("/notifications"), s.Notify, jwtMiddleware)
}
