package bootstrap

import (
	"context"
	"fmt"

	"github.com/filmschedule/filmschedule-backend/config"
	"github.com/filmschedule/filmschedule-backend/internal/logging"
	"github.com/filmschedule/filmschedule-backend/internal/projects/repository"
	"github.com/filmschedule/filmschedule-backend/internal/uploads"
)

// OpenStore connects the configured project store and returns it with a
// function that releases its connections.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	switch cfg.Database.Driver {
	case config.StoreDriverRedis:
		client, err := OpenRedis(ctx, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		logging.L().WithField("addr", cfg.Redis.Addr).Info("redis store connected")
		return repository.NewRedisStore(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil

	case config.StoreDriverPostgres:
		pool, err := OpenDB(ctx, DBOptions{
			DSN:      cfg.Database.DSN,
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			return nil, nil, err
		}
		db := SQLDB(pool)
		closeFn := func() {
			_ = db.Close()
			pool.Close()
		}

		store := repository.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		logging.L().Info("postgres store connected")
		return store, closeFn, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Database.Driver)
}

// OpenBlobStore returns the configured logo storage.
func OpenBlobStore(ctx context.Context, cfg config.StorageConfig) (uploads.BlobStore, error) {
	switch cfg.Driver {
	case config.BlobDriverS3:
		store, err := uploads.NewS3Store(ctx, uploads.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Prefix:   cfg.S3Prefix,
		})
		if err != nil {
			return nil, err
		}
		logging.L().WithField("bucket", cfg.S3Bucket).Info("s3 blob store ready")
		return store, nil

	case config.BlobDriverFS:
		store, err := uploads.NewFSStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		logging.L().WithField("dir", cfg.UploadDir).Info("filesystem blob store ready")
		return store, nil
	}
	return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
}
