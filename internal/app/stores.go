package app

import (
	"context"
	"fmt"
	"log"

	"arna/internal/config"
	"arna/internal/docstore"
	"arna/internal/safeio"
)

// openStore builds the configured document backend. Remote backends are
// wrapped in the LRU cache; the file backend reads the disk directly so
// edits made outside the process show up on the next load. The returned
// closer releases backend connections.
func openStore(ctx context.Context, cfg *config.Config, workspace *safeio.SafeFS) (docstore.Store, func() error, error) {
	var (
		origin docstore.Store
		remote bool
		closer = func() error { return nil }
	)
	switch cfg.DocStore.Backend {
	case config.StoreFile, "":
		origin = docstore.NewFileStore(workspace)
		log.Printf("document store: file root=%s", workspace.Root())
	case config.StoreMemory:
		origin = docstore.NewMemoryStore()
		log.Printf("document store: in-memory")
	case config.StoreS3:
		s3 := cfg.DocStore.S3
		s3Cfg := docstore.S3Config{
			Endpoint:  s3.Endpoint,
			Region:    s3.Region,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Bucket:    s3.Bucket,
			Prefix:    s3.Prefix,
			UseSSL:    s3.UseSSL,
		}
		if !s3Cfg.CanUse() {
			log.Printf("document store: using file fallback (s3 config incomplete)")
			origin = docstore.NewFileStore(workspace)
			break
		}
		store, err := docstore.NewS3Store(s3Cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize document s3 store: %w", err)
		}
		origin, remote = store, true
		log.Printf("document store: s3 bucket=%s endpoint=%s", s3Cfg.Bucket, s3Cfg.Endpoint)
	case config.StorePostgres:
		if cfg.DocStore.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("document store: postgres selected but DOC_STORE_PG_DSN is empty")
		}
		store, err := docstore.OpenPostgres(ctx, cfg.DocStore.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open document postgres store: %w", err)
		}
		origin, closer, remote = store, store.Close, true
		log.Printf("document store: postgres")
	default:
		return nil, nil, fmt.Errorf("document store: unknown backend %q", cfg.DocStore.Backend)
	}

	if !remote {
		return origin, closer, nil
	}
	cacheCfg := docstore.DefaultCacheConfig()
	if cfg.DocStore.CacheSize > 0 {
		cacheCfg.MaxEntries = cfg.DocStore.CacheSize
	}
	return docstore.NewCachedStore(origin, cacheCfg), closer, nil
}
