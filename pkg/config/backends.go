package config

import (
	"context"

	"github.com/matzehuels/orthoroute/pkg/cache"
	"github.com/matzehuels/orthoroute/pkg/storage"
)

// OpenCache opens the configured cache. dir is used for the file backend
// when cache.dir is unset.
func (c Config) OpenCache(ctx context.Context, dir string) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   appName + ":",
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case CacheFile:
		if c.Cache.Dir != "" {
			dir = c.Cache.Dir
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	default:
		return cache.NewNullCache(), nil
	}
}

// OpenStore opens the configured diagram store. dir is used for the file
// backend when storage.dir is unset.
func (c Config) OpenStore(ctx context.Context, dir string) (storage.Store, error) {
	switch c.Storage.Backend {
	case StorageMongo:
		ms, err := storage.NewMongoStore(ctx, storage.MongoOptions{
			URI:      c.Storage.MongoURI,
			Database: c.Storage.MongoDatabase,
		})
		if err != nil {
			return nil, err
		}
		return ms, nil
	case StorageFile:
		if c.Storage.Dir != "" {
			dir = c.Storage.Dir
		}
		fs, err := storage.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	default:
		return storage.NewMemoryStore(), nil
	}
}
