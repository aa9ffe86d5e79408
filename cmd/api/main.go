package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"account-service/internal/core/auth"
	"account-service/internal/core/cache"
	"account-service/internal/core/config"
	"account-service/internal/core/database"
	"account-service/internal/core/logger"
	"account-service/internal/core/server"
	"account-service/internal/domain"
	"account-service/internal/repo"
	"account-service/internal/service"
	"account-service/internal/stream"
	"account-service/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if err := run(cfg, log); err != nil {
		log.Error("user api exited with error", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
	log.Info("user api stopped gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 数据库
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}

	var users domain.UserRepository = repo.NewUserRepo(db)
	var rc *cache.Cache
	if cfg.Redis.Enabled {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		users = repo.NewCachedUserRepo(users, rc, time.Duration(cfg.Redis.UserTTLSec)*time.Second)
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
	}
	hasher := auth.NewHasher(cfg.Password.Cost, cfg.Password.Concurrency)
	policy := service.NewPolicy(jwter, users)
	accounts := service.NewAccountService(users, hasher, policy, log.Named("accounts"))

	state := stream.NewState()
	deps := router.Deps{
		Log:            log,
		Accounts:       accounts,
		Policy:         policy,
		Tokens:         jwter,
		State:          state,
		APIPrefix:      cfg.App.APIPrefix,
		CORSOrigins:    cfg.CORS.Origins,
		RequestTimeout: time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// 状态流：先同步播种，再后台消费
	if cfg.Kafka.Enabled {
		groupID := stream.GroupID(cfg.Kafka.GroupPrefix)
		log.Info("initializing state consumer",
			zap.String("topic", cfg.Kafka.Topic),
			zap.String("group_id", groupID),
			zap.Strings("brokers", cfg.Kafka.Brokers()),
		)
		consumer := stream.NewConsumer(
			stream.NewKafkaLog(cfg.Kafka.Brokers(), cfg.Kafka.Topic, groupID),
			state, log.Named("stream"),
		)
		if rc != nil {
			consumer.OnApply(stream.NewMirror(rc, cfg.Redis.SnapshotKey, cfg.Redis.SnapshotChannel, log.Named("mirror")).Apply)
		}
		if err := consumer.Seed(ctx); err != nil {
			return err
		}
		g.Go(func() error { return consumer.Run(gctx) })

		pub := stream.NewKafkaPublisher(cfg.Kafka.Brokers(), cfg.Kafka.Topic)
		defer pub.Close()
		deps.Publisher = pub
		deps.Phase = consumer.Phase
	}

	r := router.NewAPIEngine(deps)
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
		log,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+cfg.App.APIPrefix),
	)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	// 优雅关闭：收到信号或任一任务失败
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	opt := logger.Options{
		Service: cfg.App.Name,
		Level:   cfg.Log.Level,
		JSON:    cfg.Log.JSON,
	}
	if cfg.Log.File.Enable {
		opt.Rotate = logger.FileRotate{
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		}
	}
	return logger.Build(opt)
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	return database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Host:               cfg.DB.Host,
		Port:               cfg.DB.Port,
		Name:               cfg.DB.Name,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		SSLMode:            cfg.DB.SSLMode,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
}
