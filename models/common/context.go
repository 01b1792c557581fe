package common

import (
	"github.com/medialoom/media-services/network"
	"github.com/medialoom/media-services/util/logger"
	"github.com/op/go-logging"
)

// Context aggregates the config and the external collaborators every
// component needs: the metadata store (Redis) and the remote blob
// store (the cold-storage channel, reached through an S3-compatible
// endpoint). Components receive a Context at construction; there are
// no package-level client singletons.
type Context struct {
	Config      *Config
	Logger      *logging.Logger
	RedisClient *network.RedisClient
	RemoteStore network.RemoteStore
}

func NewContext() *Context {
	config := NewConfig()
	_logger := getLogger(config)
	return &Context{
		Config:      config,
		Logger:      _logger,
		RedisClient: getRedisClient(config),
		RemoteStore: getRemoteStore(config, _logger),
	}
}

func getLogger(config *Config) *logging.Logger {
	toStderr := config.ConfigName == "dev" || config.ConfigName == "test"
	_logger, _ := logger.InitLogger(config.LogDir, config.LogLevel, toStderr)
	return _logger
}

func getRedisClient(config *Config) *network.RedisClient {
	return network.NewRedisClient(
		config.RedisURL,
		config.RedisPassword,
		config.RedisDefaultDB)
}

func getRemoteStore(config *Config, logger *logging.Logger) network.RemoteStore {
	store, err := network.NewMinioRemoteStore(
		config.RemoteCredentials.Host,
		config.RemoteCredentials.KeyID,
		config.RemoteCredentials.SecretKey,
		config.RemoteCredentials.UseSSL,
		config.RemoteChannel,
		config.RemoteRequestTimeout,
		logger)
	if err != nil {
		panic(err)
	}
	return store
}
