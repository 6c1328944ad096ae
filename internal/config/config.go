package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the matching engine.
type Config struct {
	ListenNetwork   string
	ListenAddr      string
	HTTPPort        int
	LogLevel        string
	QueueSize       int
	TradeLogSize    int
	DepthLevelsMax  int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	listenNetwork := getStr("LISTEN_NETWORK", "unix")
	if listenNetwork != "unix" && listenNetwork != "tcp" {
		return nil, fmt.Errorf("invalid LISTEN_NETWORK: %q, must be unix or tcp", listenNetwork)
	}

	defaultAddr := "/tmp/matchd.sock"
	if listenNetwork == "tcp" {
		defaultAddr = ":9876"
	}
	listenAddr := getStr("LISTEN_ADDR", defaultAddr)
	if listenAddr == "" {
		return nil, fmt.Errorf("invalid LISTEN_ADDR: must not be empty")
	}

	httpPort, err := getInt("HTTP_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	queueSize, err := getInt("QUEUE_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_SIZE: %w", err)
	}
	if queueSize <= 0 {
		return nil, fmt.Errorf("invalid QUEUE_SIZE: must be positive")
	}

	tradeLogSize, err := getInt("TRADE_LOG_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("invalid TRADE_LOG_SIZE: %w", err)
	}
	if tradeLogSize <= 0 {
		return nil, fmt.Errorf("invalid TRADE_LOG_SIZE: must be positive")
	}

	depthLevelsMax, err := getInt("DEPTH_LEVELS_MAX", 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DEPTH_LEVELS_MAX: %w", err)
	}
	if depthLevelsMax <= 0 {
		return nil, fmt.Errorf("invalid DEPTH_LEVELS_MAX: must be positive")
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		ListenNetwork:   listenNetwork,
		ListenAddr:      listenAddr,
		HTTPPort:        httpPort,
		LogLevel:        logLevel,
		QueueSize:       queueSize,
		TradeLogSize:    tradeLogSize,
		DepthLevelsMax:  depthLevelsMax,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
