package main

import (
	"context"
	"flag"
	"time"

	mongoMigration "vintrek/internal/migrations/mongo"
	resourcesrepo "vintrek/internal/resources/repository"
	"vintrek/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	seed := flag.Bool("seed", false, "upsert the starter resource catalog after migrating")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	cfg.Log.Info("Starting Mongo migration job", "seed", *seed)

	err := migrate(ctx, cfg, *seed)
	cfg.GracefulShutdown()
	if err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}

func migrate(ctx context.Context, cfg *config.Config, seed bool) error {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		return err
	}
	if !seed {
		return nil
	}
	return mongoMigration.Seed(ctx, resourcesrepo.NewMongoResourceRepository(cfg), cfg.Log)
}
