package backend

import (
	"errors"
	"fmt"

	"budget/internal/config"
)

// BackendType names a store implementation.
type BackendType string

const (
	MemoryBackend BackendType = config.BackendMemory
	SQLiteBackend BackendType = config.BackendSQLite
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend:
		return true
	}
	return false
}

// Config selects and parameterises the store and the change feed.
type Config struct {
	Type BackendType

	SQLiteDBName string
	SeedSamples  bool

	// Change feed; empty URL disables it.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig extracts the backend settings of the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	cfg := Config{
		Type:         BackendType(appConfig.DataBackend),
		SQLiteDBName: appConfig.SQLiteDBName,
		SeedSamples:  appConfig.SeedSampleData,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBName == "" {
		return errors.New("SQLite database name is required for sqlite backend")
	}
	return nil
}

// BackendTypes lists the valid backend names.
func BackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend}
}
