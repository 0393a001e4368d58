package config

import "time"

const (
	storeBackendVar = "STORE_BACKEND"

	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
	StoreBackendSQLite = "sqlite"
)

type StoreConfig interface {
	GetStoreBackend() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
	GetSQLiteDir() string
	GetStoreTimeout() time.Duration
}

type Store struct {
	v values
}

var _ StoreConfig = Store{}

func (s Store) GetStoreBackend() string {
	return s.v.StoreBackend
}

func (s Store) GetRedisAddr() string {
	return s.v.RedisAddr
}

func (s Store) GetRedisPassword() string {
	return s.v.RedisPassword
}

func (s Store) GetRedisDB() int {
	return s.v.RedisDB
}

func (s Store) GetRedisPrefix() string {
	return s.v.RedisPrefix
}

func (s Store) GetSQLiteDir() string {
	return s.v.SQLiteDir
}

func (s Store) GetStoreTimeout() time.Duration {
	if s.v.StoreTimeout <= 0 {
		return 5 * time.Second
	}
	return s.v.StoreTimeout
}
