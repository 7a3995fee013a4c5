package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chainvote/auth"
	"chainvote/chain"
	"chainvote/cliparse"
	"chainvote/handlers"
	"chainvote/models"
	"chainvote/router"
	"chainvote/service"
	"chainvote/store"
)

func main() {
	var err error

	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	cancel()
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(context.Background())

	// Verify connection
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = mongoClient.Ping(ctx, nil)
	cancel()
	if err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	db := store.NewMongo(mongoClient.Database(cfg.MongoDatabase))
	if err := db.EnsureIndexes(context.Background()); err != nil {
		slog.Error("index creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database indexes ready")

	// Connect to the Ethereum node
	eth, err := chain.NewEthClient(cfg.EthRPCURL, cfg.ContractAddress, cfg.ServicePrivateKey, chain.Options{
		ReceiptTimeout: cfg.ReceiptTimeout,
		PollInterval:   cfg.PollInterval,
	})
	if err != nil {
		slog.Error("chain client initialization failed", "error", err)
		os.Exit(1)
	}

	// Wire services
	audit := service.NewAuditLog(db)
	votes := service.NewVoteService(eth, db, db)
	lifecycle := service.NewSessionService(eth, db, db, audit, cfg.ConfirmBeforeRecord)
	results := service.NewResultsService(eth)
	reconciler := service.NewReconciler(eth, db, db, cfg.ReconcileInterval, cfg.ReconcileThreshold)
	sessions := auth.NewSessions(cfg.SessionTTL)

	if err := bootstrapAdmin(context.Background(), db); err != nil {
		slog.Error("admin bootstrap failed", "error", err)
		os.Exit(1)
	}

	// Background repair of reservations stuck pending.
	reconcileCtx, stopReconciler := context.WithCancel(context.Background())
	defer stopReconciler()
	go reconciler.Run(reconcileCtx)

	// Create router
	voteHandler := handlers.NewVoteHandler(votes, results)
	adminHandler := handlers.NewAdminHandler(db, db, sessions, lifecycle, results, audit, reconciler)
	mux := router.NewRouter(voteHandler, adminHandler, sessions)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// bootstrapAdmin seeds the first admin account from ADMIN_USERNAME and
// ADMIN_PASSWORD when both are set. An existing username is left alone
// so restarts are idempotent.
func bootstrapAdmin(ctx context.Context, users store.UserStore) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	err = users.InsertUser(ctx, &models.AdminUser{
		Username:     username,
		PasswordHash: hash,
		Role:         "admin",
		CreatedBy:    "bootstrap",
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, store.ErrDuplicate) {
		slog.Info("Admin account already exists", "username", username)
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("Admin account created", "username", username)
	return nil
}
