package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"cricket-booking/internal/auth"
	"cricket-booking/internal/config"
	"cricket-booking/internal/handlers"
	"cricket-booking/internal/kafka"
	"cricket-booking/internal/logger"
	rediswrap "cricket-booking/internal/redis"
	"cricket-booking/internal/services"
	"cricket-booking/internal/storage"
)

type serveOptions struct {
	seed bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the ground update consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.seed, "seed", false, "Insert the demo grounds before serving")
	return cmd
}

// app is the service as serve wires it. close releases everything, store included.
type app struct {
	log      *logger.Logger
	store    storage.Store
	producer *kafka.Producer
	lock     *rediswrap.SlotLock
	grounds  *services.GroundService
	router   *gin.Engine
}

func newApp(cfg *config.Config, log *logger.Logger, store storage.Store) (*app, error) {
	a := &app{log: log, store: store}

	log.LogProcess("KAFKA", "Initializing Kafka producer...")
	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.MockMode, log)
	if err != nil {
		return nil, err
	}
	a.producer = producer
	log.LogKafka("INIT", "producer", "Kafka producer initialized successfully")

	var bookingOpts []services.BookingOption
	bookingOpts = append(bookingOpts, services.WithPlatformFee(cfg.Booking.PlatformFeeBasisPoints))
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.lock = rediswrap.NewSlotLock(client, cfg.Redis.LockTTL, cfg.Redis.LockWait)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.lock.Ping(ctx); err != nil {
			_ = a.lock.Close()
			_ = producer.Close()
			return nil, errors.New("redis unreachable at " + cfg.Redis.Addr + ": " + err.Error())
		}
		bookingOpts = append(bookingOpts, services.WithSlotLock(a.lock))
		log.LogProcess("SERVICE", "Redis slot lock enabled")
	} else {
		log.Warn("REDIS", "REDIS_ADDR not set, slot lock disabled")
	}

	a.grounds = services.NewGroundService(store, log)
	bookings := services.NewBookingService(store, producer, log, bookingOpts...)
	schedule := services.NewScheduleService(store)
	log.LogProcess("SERVICE", "Booking services initialized")

	a.router = handlers.NewRouter(handlers.RouterConfig{
		Log:          log,
		Tokens:       auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Store:        store,
		Grounds:      a.grounds,
		Bookings:     bookings,
		Schedule:     schedule,
		RateLimitRPS: cfg.Server.RateLimitRPS,
	})
	return a, nil
}

func (a *app) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Error("KAFKA", "Failed to close producer: "+err.Error())
		}
	}
	if a.lock != nil {
		if err := a.lock.Close(); err != nil {
			a.log.Error("REDIS", "Failed to close client: "+err.Error())
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Error("DATABASE", "Failed to close store: "+err.Error())
	}
}

// startConsumer runs the ground update consumer until ctx ends. It returns a channel closed on exit.
func (a *app) startConsumer(ctx context.Context, cfg config.KafkaConfig) (<-chan struct{}, error) {
	done := make(chan struct{})
	if cfg.MockMode || cfg.ConsumerDisabled {
		a.log.Warn("KAFKA", "Ground update consumer disabled")
		close(done)
		return done, nil
	}

	consumer, err := kafka.NewConsumer(cfg.Brokers, cfg.GroupID, cfg.GroundTopic, a.log)
	if err != nil {
		close(done)
		return done, err
	}

	go func() {
		defer close(done)
		defer consumer.Close()
		a.log.LogKafka("START", cfg.GroundTopic, "Starting Kafka consumer goroutine")
		if err := consumer.ConsumeGroundUpdates(ctx, a.grounds); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error("KAFKA", "Consumer error: "+err.Error())
		}
	}()
	return done, nil
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Close()

	gin.SetMode(gin.ReleaseMode)
	log.LogProcess("STARTUP", "Cricket booking service starting up...")

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, log, store)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer a.close()

	if opts.seed || cfg.Database.Driver == "memory" {
		if _, err := seedGrounds(cmd.Context(), a.grounds, log); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumerDone, err := a.startConsumer(ctx, cfg.Kafka)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      a.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.LogProcess("SERVER", "Starting HTTP server on "+cfg.Server.Port)
		log.Info("STARTUP", "Health check available at: http://localhost"+cfg.Server.Port+"/health")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Warn("SHUTDOWN", "Received shutdown signal, initiating graceful shutdown...")
	case err := <-serveErr:
		if err != nil {
			log.Error("SERVER", "Server failed: "+err.Error())
			stop()
			<-consumerDone
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("SHUTDOWN", "Server forced to shutdown: "+err.Error())
	}
	stop()
	<-consumerDone

	log.Info("SHUTDOWN", "Cricket booking service shutdown completed")
	return nil
}
