package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"

	"github.com/valkey-io/valkey-go"
)

// Valkey database index organization. Each index provides logical
// separation for one cache category.
const (
	// GENERAL_CACHE_INDEX (DB 0) - miscellaneous cache operations
	GENERAL_CACHE_INDEX = iota

	// USER_CACHE_INDEX (DB 1) - user rows and openid-to-id mappings
	USER_CACHE_INDEX

	// FORTUNE_CACHE_INDEX (DB 2) - per-(user,day) fortune payloads
	FORTUNE_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.ErrMsg("failed to initialize cache database: address or port is empty")
	}

	var cacheDB Cache

	var err error
	cacheDB.General, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    GENERAL_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create general valkey client", err)
	}

	cacheDB.User, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    USER_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create user valkey client", err)
	}

	cacheDB.Fortune, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    FORTUNE_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create fortune valkey client", err)
	}

	s.Cache = cacheDB

	if config.DatabaseCacheReset != -1 {
		go clearCacheDB(config.DatabaseCacheReset, cacheDB)
	}

	return nil
}

func clearCacheDB(index int, cacheDB Cache) {
	log := logger.New("database").File("cache.database").Function("clearCacheDB")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var client CacheClient
	var dbName string

	switch index {
	case GENERAL_CACHE_INDEX:
		client = cacheDB.General
		dbName = "General"
	case USER_CACHE_INDEX:
		client = cacheDB.User
		dbName = "User"
	case FORTUNE_CACHE_INDEX:
		client = cacheDB.Fortune
		dbName = "Fortune"
	default:
		log.Warn("Invalid cache database index", "index", index)
		return
	}

	if err := client.Do(ctx, client.B().Flushdb().Build()).Error(); err != nil {
		log.Er("Failed to clear cache database", err, "index", index, "dbName", dbName)
		return
	}

	log.Info("Successfully cleared cache database", "index", index, "dbName", dbName)
}
