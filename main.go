package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"

	"happenings/app"
	"happenings/config"
	"happenings/db"
	"happenings/gateway"
	"happenings/pubsub"
	"happenings/tracing"
)

func main() {
	log.Init(logrus.InfoLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	traceProvider, err := tracing.ConfigureTraceProvider(cfg.JaegerEndpoint, cfg.GatewayAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Could not configure tracing")
	}

	dbconn, err := db.Open(cfg.PostgresURL)
	if err != nil {
		logrus.WithError(err).Fatal("Could not connect to Postgres")
	}
	defer dbconn.Close()

	redisClient := pubsub.NewRedisClient(cfg.RedisAddr)
	defer redisClient.Close()

	squareClient := gateway.NewSquareClient(
		cfg.PaymentsEndpoint(),
		cfg.Square.APIKey,
		cfg.Square.LocationID,
		cfg.Square.PaymentTimeout,
	)

	a, err := app.New(
		app.Options{
			HTTPAddr:            cfg.HTTPAddr,
			SessionTTL:          cfg.SessionTTL,
			EnforceSlotCapacity: cfg.EnforceSlotCapacity,
		},
		dbconn,
		redisClient,
		squareClient,
		traceProvider,
	)
	if err != nil {
		logrus.WithError(err).Fatal("Could not create app")
	}

	if err := a.Run(ctx); err != nil {
		logrus.WithError(err).Fatal("App stopped")
	}
}
