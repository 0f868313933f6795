// Package storage opens the key-value store selected by configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/nibzard/rxtodo-go/internal/config"
	"github.com/nibzard/rxtodo-go/internal/kvstore"
	"github.com/nibzard/rxtodo-go/internal/kvstore/postgres"
	"github.com/nibzard/rxtodo-go/internal/kvstore/s3"
	"github.com/nibzard/rxtodo-go/internal/kvstore/sqlite"
)

// Open opens the store described by sc.
func Open(ctx context.Context, sc config.StoreConfig) (kvstore.Store, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	var (
		store kvstore.Store
		err   error
	)
	switch sc.Driver {
	case config.DriverMemory:
		store = kvstore.NewMemory()
	case config.DriverFile:
		store, err = asStore(kvstore.OpenFile(sc.Path))
	case config.DriverSQLite:
		store, err = asStore(sqlite.Open(ctx, sc.Path))
	case config.DriverPostgres:
		store, err = asStore(postgres.Open(ctx, sc.DSN))
	case config.DriverS3:
		store, err = asStore(s3.New(ctx, s3.Config{
			Bucket:    sc.S3.Bucket,
			Region:    sc.S3.Region,
			Endpoint:  sc.S3.Endpoint,
			Prefix:    sc.S3.Prefix,
			PathStyle: sc.S3.PathStyle,
		}))
	default:
		return nil, fmt.Errorf("unknown store driver %q", sc.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", sc.Driver, err)
	}
	return store, nil
}

// asStore keeps a failed open from turning into a non-nil interface.
func asStore[S kvstore.Store](s S, err error) (kvstore.Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Describe returns a short human-readable location of the store.
func Describe(sc config.StoreConfig) string {
	switch sc.Driver {
	case config.DriverFile, config.DriverSQLite:
		return fmt.Sprintf("%s (%s)", sc.Driver, sc.Path)
	case config.DriverPostgres:
		return "postgres"
	case config.DriverS3:
		return fmt.Sprintf("s3 (s3://%s/%s)", sc.S3.Bucket, sc.S3.Prefix)
	}
	return sc.Driver
}
