package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dakshgoel/schedulr/config"
	"github.com/dakshgoel/schedulr/internal/bootstrap"
	"github.com/dakshgoel/schedulr/internal/cache"
	"github.com/dakshgoel/schedulr/internal/calendar"
	"github.com/dakshgoel/schedulr/internal/email"
	"github.com/dakshgoel/schedulr/internal/identity"
	"github.com/dakshgoel/schedulr/internal/kafka"
	"github.com/dakshgoel/schedulr/internal/repository"
	"github.com/dakshgoel/schedulr/internal/service/meetings"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	tokenCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Identity.TokenCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	identityClient := identity.NewClient(cfg.Identity, tokenCache)
	googleCalendar := calendar.NewGoogleCalendar(identityClient, cfg.Calendar.CalendarID)
	emailSender := email.NewSender(cfg.Email.APIKey, cfg.Email.From)

	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	meetingRepo := repository.NewMeetingRepository(pool)

	meetingService := meetings.NewMeetingService(
		identityClient,
		userRepo,
		eventRepo,
		meetingRepo,
		googleCalendar,
		emailSender,
		meetings.WithEventsTopic(producer, cfg.Kafka.MeetingEventsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, meetingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
