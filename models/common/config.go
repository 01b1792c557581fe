package common

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/medialoom/media-services/constants"
	"github.com/medialoom/media-services/util"
	"github.com/op/go-logging"
	"github.com/spf13/viper"
)

type S3Credentials struct {
	Host      string
	KeyID     string
	SecretKey string
	UseSSL    bool
}

type Config struct {
	AllowedExtensions    []string
	BaseURL              string
	BaseWorkingDir       string
	CacheDir             string
	ConfigName           string
	LogDir               string
	LogLevel             logging.Level
	MaxCacheEntries      int
	MaxFileSize          int64
	RedisDefaultDB       int
	RedisPassword        string
	RedisURL             string
	RemoteChannel        string
	RemoteCredentials    S3Credentials
	RemoteRequestTimeout time.Duration
	StaticDir            string
	TempDir              string
	VideoAttachmentSize  int64
}

var logLevels = map[string]logging.Level{
	"CRITICAL": logging.CRITICAL,
	"ERROR":    logging.ERROR,
	"WARNING":  logging.WARNING,
	"NOTICE":   logging.NOTICE,
	"INFO":     logging.INFO,
	"DEBUG":    logging.DEBUG,
}

// Returns a new config based on ENV var MEDIALOOM_ENV
func NewConfig() *Config {
	config := loadConfig()
	config.expandPaths()
	config.sanityCheck()
	config.makeDirs()
	return config
}

func loadConfig() *Config {
	configDir, envName := getEnvVars()
	v := viper.New()
	v.AddConfigPath(configDir)
	v.SetConfigName(".env." + envName)
	v.SetConfigType("env")
	v.SetDefault("MAX_FILE_SIZE", constants.DefaultMaxFileSize)
	v.SetDefault("REMOTE_REQUEST_TIMEOUT", 5*time.Minute)
	v.SetDefault("VIDEO_ATTACHMENT_SIZE", constants.VideoAttachmentThreshold)
	v.SetDefault("ALLOWED_EXTENSIONS", constants.AllowedExtensions)
	err := v.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("Fatal error config file: %s \n", err))
	}
	return &Config{
		AllowedExtensions: v.GetStringSlice("ALLOWED_EXTENSIONS"),
		BaseURL:           v.GetString("BASE_URL"),
		BaseWorkingDir:    v.GetString("BASE_WORKING_DIR"),
		CacheDir:          v.GetString("CACHE_DIR"),
		ConfigName:        envName,
		LogDir:            v.GetString("LOG_DIR"),
		LogLevel:          logLevels[v.GetString("LOG_LEVEL")],
		MaxCacheEntries:   v.GetInt("MAX_CACHE_ENTRIES"),
		MaxFileSize:       v.GetInt64("MAX_FILE_SIZE"),
		RedisDefaultDB:    v.GetInt("REDIS_DEFAULT_DB"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisURL:          v.GetString("REDIS_URL"),
		RemoteChannel:     v.GetString("REMOTE_CHANNEL"),
		RemoteCredentials: S3Credentials{
			Host:      v.GetString("REMOTE_S3_HOST"),
			KeyID:     v.GetString("REMOTE_S3_KEY"),
			SecretKey: v.GetString("REMOTE_S3_SECRET"),
			UseSSL:    v.GetBool("REMOTE_S3_USE_SSL"),
		},
		RemoteRequestTimeout: v.GetDuration("REMOTE_REQUEST_TIMEOUT"),
		StaticDir:            v.GetString("STATIC_DIR"),
		TempDir:              v.GetString("TEMP_DIR"),
		VideoAttachmentSize:  v.GetInt64("VIDEO_ATTACHMENT_SIZE"),
	}
}

func getEnvVars() (string, string) {
	configDir := getRequiredEnvVar("MEDIALOOM_CONFIG_DIR")
	envName := getRequiredEnvVar("MEDIALOOM_ENV")
	return configDir, envName
}

func getRequiredEnvVar(varName string) string {
	value := os.Getenv(varName)
	if value == "" {
		panic(fmt.Sprintf("Required env var %s not set", varName))
	}
	return value
}

// Expand ~ to home dir in path settings, and root relative cache,
// temp and static dirs under the base working dir.
func (c *Config) expandPaths() {
	c.BaseWorkingDir = expandPath(c.BaseWorkingDir)
	c.LogDir = expandPath(c.LogDir)
	c.CacheDir = c.rootedPath(c.CacheDir, "static/files")
	c.TempDir = c.rootedPath(c.TempDir, "temp")
	c.StaticDir = c.rootedPath(c.StaticDir, "static")
}

func (c *Config) rootedPath(dir, fallback string) string {
	if dir == "" {
		dir = fallback
	}
	dir = expandPath(dir)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.BaseWorkingDir, dir)
	}
	return dir
}

func expandPath(dirName string) string {
	dir, err := util.ExpandTilde(dirName)
	if err != nil {
		panic(err)
	}
	return dir
}

func (c *Config) sanityCheck() {
	if c.BaseURL == "" {
		panic("Config is missing BASE_URL")
	}
	if c.RemoteChannel == "" {
		panic("Config is missing REMOTE_CHANNEL")
	}
	if c.MaxFileSize < 1 {
		panic("MAX_FILE_SIZE must be greater than zero")
	}
	// Don't let dev or test configs point at external hosts.
	// A test run should never touch demo or prod storage.
	if c.ConfigName == "dev" || c.ConfigName == "test" {
		if !isLocalHost(c.RemoteCredentials.Host) || !isLocalHost(c.RedisURL) {
			panic(fmt.Sprintf("Config '%s' may only point to localhost services", c.ConfigName))
		}
	}
}

func isLocalHost(host string) bool {
	return host == "" ||
		hasHostPrefix(host, "localhost") ||
		hasHostPrefix(host, "127.0.0.1")
}

func hasHostPrefix(host, prefix string) bool {
	return host == prefix || len(host) > len(prefix) && host[:len(prefix)+1] == prefix+":"
}

func (c *Config) makeDirs() {
	dirs := []string{
		c.CacheDir,
		c.LogDir,
		c.TempDir,
	}
	for _, dir := range dirs {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			panic(err)
		}
	}
}
