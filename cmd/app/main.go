package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zvrva/eventy/config"
	"github.com/zvrva/eventy/internal/bootstrap"
	"github.com/zvrva/eventy/internal/cache"
	"github.com/zvrva/eventy/internal/email"
	"github.com/zvrva/eventy/internal/kafka"
	"github.com/zvrva/eventy/internal/repository"
	"github.com/zvrva/eventy/internal/service/auth"
	"github.com/zvrva/eventy/internal/service/events"
	"github.com/zvrva/eventy/internal/service/tickets"
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

	if err := repository.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	resetTokens := cache.NewResetTokenStore(cfg.Redis, time.Duration(cfg.Auth.ResetTTLMinutes)*time.Minute)
	defer resetTokens.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	sender := email.NewSender(cfg.SMTP)

	eventRepo := repository.NewEventRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	eventService := events.NewEventService(eventRepo)
	ticketService := tickets.NewTicketService(ticketRepo, eventRepo, userRepo, producer, cfg.Kafka.NotificationsTopic)
	authService := auth.NewAuthService(userRepo, resetTokens, sender, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	if err := bootstrap.Run(ctx, cfg, eventService, ticketService, authService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
