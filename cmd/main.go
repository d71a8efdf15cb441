/*
Package main is the entry point for the EcoTrade server.

It is responsible for loading configuration, initializing the global logging
system, connecting to MongoDB and the photo storage backend, starting the
realtime gateway, and gracefully handling operating system interrupt signals
(SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecotrade/internal/app/chat"
	"ecotrade/internal/app/db"
	"ecotrade/internal/app/gateway"
	"ecotrade/internal/app/item"
	"ecotrade/internal/app/storage"
	"ecotrade/internal/app/trade"
	"ecotrade/internal/app/user"
	"ecotrade/internal/configs"
	"ecotrade/internal/handler"
	"ecotrade/internal/pkg/logx"
	"ecotrade/internal/pkg/mail"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("mongo_database", cfg.MongoDatabase).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancelConnect := context.WithTimeout(ctx, 10*time.Second)
	mdb, err := db.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	cancelConnect()
	if err != nil {
		logx.Fatal(err, "Failed to connect to MongoDB")
	}

	users := user.NewStore(mdb)
	items := item.NewStore(mdb)
	trades := trade.NewStore(mdb)
	chats := chat.NewStore(mdb)

	photos, err := storage.NewPhotoService(storage.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize photo storage")
	}

	mailer := mail.NewSMTPMailer(mail.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.MailFrom,
	})

	// Initialize the realtime gateway
	gw := gateway.NewGateway(chats, handler.NewSenderResolver(users))

	deps := &handler.AppDeps{
		Config:  cfg,
		Gateway: gw,
		Users:   users,
		Items:   items,
		Trades:  trades,
		Chats:   chats,
		Storage: photos,
		Mailer:  mailer,
	}

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("EcoTrade Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	gw.Shutdown()

	disconnectCtx, cancelDisconnect := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDisconnect()
	if err := db.Disconnect(disconnectCtx, mdb); err != nil {
		logx.Error(err, "Failed to disconnect from MongoDB")
	}

	logx.Info("Server gracefully stopped.")
}
