package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"happenings/bookings"
	dbLib "happenings/db"
	"happenings/http"
	"happenings/pubsub"
	"happenings/pubsub/bus"
	"happenings/pubsub/command"
	"happenings/pubsub/event"
	"happenings/pubsub/outbox"
	"happenings/session"
)

type Options struct {
	HTTPAddr            string
	SessionTTL          time.Duration
	EnforceSlotCapacity bool
}

type App struct {
	db              *sqlx.DB
	watermillRouter *message.Router
	httpServer      *http.Server
	traceProvider   *tracesdk.TracerProvider
}

func New(
	opts Options,
	db *sqlx.DB,
	redisClient *redis.Client,
	payments bookings.PaymentProvider,
	traceProvider *tracesdk.TracerProvider,
) (App, error) {
	watermillLogger := log.NewWatermill(log.FromContext(context.Background()))

	redisPublisher := pubsub.NewRedisPublisher(redisClient, watermillLogger)

	commandBus, err := bus.NewCommandBus(log.CorrelationPublisherDecorator{Publisher: redisPublisher})
	if err != nil {
		return App{}, fmt.Errorf("failed to create command bus: %w", err)
	}

	eventsRepo := dbLib.NewEventsPostgresRepository(db)
	peopleRepo := dbLib.NewPeoplePostgresRepository(db)
	bookingsRepo := dbLib.NewBookingsPostgresRepository(db)
	dataLake := dbLib.NewDataLake(db)

	bookingsService := bookings.NewService(bookingsRepo, eventsRepo, peopleRepo, payments, opts.EnforceSlotCapacity)

	watermillRouter, err := pubsub.NewWatermillRouter(
		outbox.NewPostgresSubscriber(db.DB, watermillLogger),
		redisPublisher,
		pubsub.NewRedisSubscriber(redisClient, "svc-happenings.events_splitter", watermillLogger),
		pubsub.NewRedisSubscriber(redisClient, "svc-happenings.store_to_data_lake", watermillLogger),
		event.NewProcessorConfig(redisClient, watermillLogger),
		event.NewHandler(),
		command.NewProcessorConfig(redisClient, watermillLogger),
		command.NewHandler(bookingsService),
		dataLake,
		watermillLogger,
	)
	if err != nil {
		return App{}, fmt.Errorf("failed to create watermill router: %w", err)
	}

	httpServer := http.NewServer(
		opts.HTTPAddr,
		commandBus,
		eventsRepo,
		peopleRepo,
		bookingsService,
		session.NewRedisStore(redisClient, opts.SessionTTL),
	)

	return App{
		db:              db,
		watermillRouter: watermillRouter,
		httpServer:      httpServer,
		traceProvider:   traceProvider,
	}, nil
}

func (a App) Run(ctx context.Context) error {
	if err := dbLib.InitializeDatabaseSchema(a.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return a.traceProvider.Shutdown(context.Background())
	})

	g.Go(func() error {
		return a.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		// the app is not healthy before the router is ready
		<-a.watermillRouter.Running()

		return a.httpServer.Run(ctx)
	})

	return g.Wait()
}
