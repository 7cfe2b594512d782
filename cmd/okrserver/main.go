// Command okrserver runs the OKR tracker API and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"

	"okrproject/config"
	"okrproject/database"
	"okrproject/logger"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "okrserver",
	Short:         "OKR tracker API server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, indexesCmd, createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runtime holds what every command needs: configuration, a logger and an
// open database.
type runtime struct {
	cfg    *config.Config
	log    *zap.Logger
	client *mongo.Client
	db     *mongo.Database
}

func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, err
	}

	client, err := database.Connect(ctx, cfg.MongoURI, log)
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:    cfg,
		log:    log,
		client: client,
		db:     client.Database(cfg.MongoDatabase),
	}, nil
}

func (rt *runtime) Close() {
	if err := rt.client.Disconnect(context.Background()); err != nil {
		rt.log.Error("failed to disconnect from MongoDB", zap.Error(err))
	}
	_ = rt.log.Sync()
}
