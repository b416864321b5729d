package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	candidacyhandler "ballotbox/internal/candidacy/handler"
	candidacyservice "ballotbox/internal/candidacy/service"
	candidacystore "ballotbox/internal/candidacy/store"
	electionhandler "ballotbox/internal/election/handler"
	electionservice "ballotbox/internal/election/service"
	electionstore "ballotbox/internal/election/store"
	httpapi "ballotbox/internal/http"
	identityhandler "ballotbox/internal/identity/handler"
	"ballotbox/internal/identity/otp"
	identityservice "ballotbox/internal/identity/service"
	identitystore "ballotbox/internal/identity/store"
	"ballotbox/internal/platform/config"
	"ballotbox/internal/platform/httpserver"
	"ballotbox/internal/platform/logger"
	"ballotbox/internal/platform/postgres"
	redisplatform "ballotbox/internal/platform/redis"
	"ballotbox/internal/token"
	votinghandler "ballotbox/internal/voting/handler"
	votingmetrics "ballotbox/internal/voting/metrics"
	votingservice "ballotbox/internal/voting/service"
	votingstore "ballotbox/internal/voting/store"
)

// main wires stores, services, and the HTTP surface. Business logic lives in
// the internal module packages; this stays assembly only.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var (
		users       identitystore.UserStore
		elections   electionstore.ElectionStore
		candidacies candidacystore.CandidacyStore
		votes       votingstore.VoteStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		users = identitystore.NewPostgresUserStore(pool)
		elections = electionstore.NewPostgresElectionStore(pool)
		candidacies = candidacystore.NewPostgresCandidacyStore(pool)
		votes = votingstore.NewPostgresVoteStore(pool)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		users = identitystore.NewInMemoryUserStore()
		elections = electionstore.NewInMemoryElectionStore()
		candidacies = candidacystore.NewInMemoryCandidacyStore()
		votes = votingstore.NewInMemoryVoteStore()
	}

	var otpStore otp.Store
	redisClient, err := redisplatform.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		otpStore = otp.NewRedisStore(redisClient.Client)
	} else {
		log.Warn("REDIS_URL not set, using in-memory OTP store")
		otpStore = otp.NewInMemoryStore()
	}

	otpService := otp.NewService(otpStore, &otp.LogSender{Logger: log}, cfg.OTPTTL)
	jwtService := token.NewJWTService(cfg.JWTSigningKey, "ballotbox", cfg.TokenTTL)

	electionSvc := electionservice.New(elections, votes, log)
	candidacySvc := candidacyservice.New(candidacies, users, elections, votes, log)
	votingSvc := votingservice.New(votes, users, elections, candidacies, votingmetrics.New(), log)
	identitySvc := identityservice.New(users, otpService, jwtService, votes, electionSvc, candidacySvc, log)

	router := httpapi.NewRouter(httpapi.Handlers{
		Identity:  identityhandler.New(identitySvc, log),
		Election:  electionhandler.New(electionSvc, log),
		Candidacy: candidacyhandler.New(candidacySvc, log),
		Voting:    votinghandler.New(votingSvc, log),
	}, jwtService, log)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting ballotbox", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
