package main

import (
	"expvar"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"tortillometro/internal/cache"
	"tortillometro/internal/db"
	"tortillometro/internal/domain/storage"
	"tortillometro/internal/ratelimiter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig(logger *zap.SugaredLogger) ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: envInt(logger, "RATELIMITER_REQUESTS_COUNT", 200),
		TimeFrame:            5 * time.Second,
		Enabled:              envBool(logger, "RATE_LIMITER_ENABLED", false),
	}
}

// loadConfig reads the environment. Unparseable values are logged and replaced
// by their defaults.
func loadConfig(logger *zap.SugaredLogger) config {
	return config{
		addr:   envString("ADDR", ":8080"),
		env:    envString("ENV", "development"),
		apiURL: os.Getenv("EXTERNAL_URL"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(envInt(logger, "DB_MAX_CONNS", 10)),
			maxIdleTime: envString("DB_MAX_IDLE_TIME", "15m"),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
		},
		redis: redisConfig{
			addr:     os.Getenv("REDIS_ADDR"),
			password: os.Getenv("REDIS_PASSWORD"),
			db:       envInt(logger, "REDIS_DB", 0),
			ttl:      envDuration(logger, "CACHE_TTL", 30*time.Second),
		},
		rateLimiter: LoadRateLimiterConfig(logger),
	}
}

func envString(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

func envInt(logger *zap.SugaredLogger, key string, def int) int {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		logger.Warnw("invalid config value, using default", "key", key, "value", val, "default", def)
		return def
	}
	return parsed
}

func envBool(logger *zap.SugaredLogger, key string, def bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		logger.Warnw("invalid config value, using default", "key", key, "value", val, "default", def)
		return def
	}
	return parsed
}

func envDuration(logger *zap.SugaredLogger, key string, def time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists || val == "" {
		return def
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		logger.Warnw("invalid config value, using default", "key", key, "value", val, "default", def.String())
		return def
	}
	return parsed
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

var version = "1.0.0"

//	@title			Tortillometro API
//	@description	Rate the tortilla at bars on a shared map.

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath						/
//	@securityDefinitions.basic	BasicAuth

func main() {
	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Infow("no .env file loaded, using process environment", "error", err.Error())
	}

	cfg := loadConfig(logger)

	if cfg.db.addr == "" {
		logger.Fatal("DB_ADDR is required")
	}

	// Database
	pool, err := db.New(cfg.db.addr, cfg.db.maxConns, cfg.db.maxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	app := &application{
		config: cfg,
		logger: logger,
		store:  storage.NewContainer(pool),
	}

	// Cache
	if cfg.redis.addr != "" {
		rdb, err := cache.NewRedisClient(cfg.redis.addr, cfg.redis.password, cfg.redis.db)
		if err != nil {
			logger.Warnw("entry cache disabled", "error", err.Error())
		} else {
			defer rdb.Close()
			app.cache = cache.NewEntryCache(rdb, "tortillometro", cfg.redis.ttl)
			logger.Infow("entry cache enabled", "addr", cfg.redis.addr, "ttl", cfg.redis.ttl.String())
		}
	}

	// Rate limiter
	if cfg.rateLimiter.Enabled {
		rl := ratelimiter.NewFixedWindowLimiter(
			cfg.rateLimiter.RequestsPerTimeFrame,
			cfg.rateLimiter.TimeFrame,
		)
		defer rl.Stop()
		app.rateLimiter = rl
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]any{
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
			"max_conns":      s.MaxConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
