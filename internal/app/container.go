package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"staffing-hub/internal/config"
	"staffing-hub/internal/database"
	"staffing-hub/internal/database/migration"
	dbpostgres "staffing-hub/internal/database/postgres"
	"staffing-hub/internal/event"
	"staffing-hub/internal/infrastructure/cache"
	"staffing-hub/internal/infrastructure/messaging"
	"staffing-hub/internal/pkg/jwt"
	"staffing-hub/internal/repository"
	"staffing-hub/internal/usecase"
	"staffing-hub/internal/ws"

	"github.com/rs/zerolog"
)

type Container struct {
	Config config.Config
	Logger zerolog.Logger

	DB    database.DB
	Cache *cache.Redis
	Kafka *messaging.KafkaPublisher
	Hub   *ws.Hub
	JWT   jwt.Service

	Ranking  usecase.RankingUsecase
	Requests usecase.RequestUsecase
	Slots    usecase.SlotUsecase
}

// NewLogger builds the root logger. Development environments get the console
// writer; everything else logs JSON to stdout.
func NewLogger(cfg config.AppConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var logger zerolog.Logger
	if strings.EqualFold(cfg.Environment, "development") {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Str("app", cfg.AppName).Logger()
}

func NewContainer(cfg config.Config, logger zerolog.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  cache.NewRedis(cfg.Redis, logger),
		Hub:    ws.NewHub(logger),
		JWT:    jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn),
	}

	publishers := event.Fanout{c.Hub}
	if cfg.Kafka.Enabled() {
		kp, err := messaging.DialKafka(cfg.Kafka, logger)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.Kafka = kp
		publishers = append(publishers, kp)
	} else {
		logger.Info().Msg("kafka brokers not configured, events go to websocket subscribers only")
	}

	directory := repository.NewPostgresDirectoryRepository(db)
	profiles := repository.NewPostgresSkillProfileRepository(db)
	roles := repository.NewPostgresRoleRepository(db)
	requests := repository.NewPostgresRequestRepository(db)
	assignments := repository.NewPostgresAssignmentRepository(db)

	c.Ranking = usecase.NewRankingUsecase(roles, profiles, c.Cache, logger)
	c.Requests = usecase.NewRequestUsecase(requests, directory, directory, roles, publishers, logger)
	c.Slots = usecase.NewSlotUsecase(roles, directory, assignments, requests, profiles, c.Cache, publishers, logger)

	return c, nil
}

// Migrate applies the embedded schema migrations.
func (c *Container) Migrate(ctx context.Context) error {
	r := migration.Runner{Logger: c.Logger}
	return r.Run(ctx, c.DB.SQLDB())
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Kafka != nil {
		errs = append(errs, c.Kafka.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
