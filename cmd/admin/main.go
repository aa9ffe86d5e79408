package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"account-service/internal/core/auth"
	"account-service/internal/core/cache"
	"account-service/internal/core/config"
	"account-service/internal/core/database"
	"account-service/internal/core/logger"
	"account-service/internal/domain"
	"account-service/internal/repo"
	"account-service/internal/service"
)

// admin 创建或提升超级用户，例如：
//
//	go run ./cmd/admin --email root@example.com --password 's3cret-pass'
func main() {
	var (
		cfgPath  = pflag.StringP("config", "c", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
		email    = pflag.StringP("email", "e", os.Getenv("FIRST_SUPERUSER"), "superuser email")
		password = pflag.StringP("password", "p", os.Getenv("FIRST_SUPERUSER_PASSWORD"), "superuser password (kept if empty and the user exists)")
		name     = pflag.StringP("name", "n", "", "display name")
		timeout  = pflag.Duration("timeout", 30*time.Second, "overall timeout")
	)
	pflag.Parse()

	_ = godotenv.Load()
	cfg := config.Load(*cfgPath)
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "--email is required")
		pflag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Host:               cfg.DB.Host,
		Port:               cfg.DB.Port,
		Name:               cfg.DB.Name,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		SSLMode:            cfg.DB.SSLMode,
		MaxOpenConns:       2,
		MaxIdleConns:       1,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate", zap.Error(err))
		}
	}

	var rc *cache.Cache
	if cfg.Redis.Enabled {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Fatal("redis ping", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
	}
	accounts := newAccounts(cfg, db, rc, log)

	u, created, err := accounts.EnsureSuperuser(ctx, domain.NewUser{
		Email:    *email,
		Password: *password,
		Name:     *name,
	})
	if err != nil {
		log.Fatal("ensure superuser FAILED", zap.String("email", *email), zap.Error(err))
	}
	if created {
		log.Info("superuser created", zap.Uint64("user_id", u.ID), zap.String("email", u.Email))
		return
	}
	log.Info("superuser promoted", zap.Uint64("user_id", u.ID), zap.String("email", u.Email))
}

// newAccounts 与 api 共用同一个 Redis 时（rc 非空），提升操作必须让 user:<id> 缓存失效
func newAccounts(cfg *config.Config, db *gorm.DB, rc *cache.Cache, log *zap.Logger) *service.AccountService {
	var users domain.UserRepository = repo.NewUserRepo(db)
	if rc != nil {
		users = repo.NewCachedUserRepo(users, rc, time.Duration(cfg.Redis.UserTTLSec)*time.Second)
	}
	return service.NewAccountService(
		users,
		auth.NewHasher(cfg.Password.Cost, 1),
		service.NewPolicy(nil, users),
		log.Named("accounts"),
	)
}
