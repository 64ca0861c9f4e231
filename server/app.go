package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equipd/config"
	"equipd/internal/catalog"
	"equipd/internal/db"
	"equipd/internal/health"
	"equipd/internal/instance"
	"equipd/internal/logs"
	"equipd/internal/middleware"
	"equipd/internal/models"
	"equipd/internal/relation"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	db     *gorm.DB
	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	// 1) Логи
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	// 2) БД — пул внедряется сюда и раздаётся сторам, глобального нет
	d, err := db.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	a.db = d
	if err := db.Tune(a.db, db.Pool{
		MaxOpen:     a.cfg.Database.MaxOpen,
		MaxIdle:     a.cfg.Database.MaxIdle,
		MaxLifetime: a.cfg.Database.MaxLifetime,
	}); err != nil {
		log.Fatalf("db pool tune failed: %v", err)
	}

	// восемь таблиц: три шаблонных, две связки, три экземплярных
	if err := a.db.AutoMigrate(
		&models.DeviceInfo{},
		&models.SubsystemInfo{},
		&models.ComponentInfo{},
		&models.DeviceInfoSubsystemInfo{},
		&models.SubsystemInfoComponentInfo{},
		&models.Device{},
		&models.Subsystem{},
		&models.Component{},
	); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	// 3) Роутер + middleware
	a.Router = mux.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.LoggerMW)

	health.RegisterRoutesWithDB(a.Router, a.db)

	// 4) Сторы и сервис
	catStore := catalog.NewStore(a.db)
	asm := catalog.NewAssembler(a.db)
	instStore := instance.NewStore(a.db)
	relSvc := relation.NewService(a.db)

	catalog.NewHTTP(catStore, asm).RegisterRoutes(a.Router)
	instance.NewHTTP(instStore).RegisterRoutes(a.Router)
	relation.NewHTTP(relSvc).RegisterRoutes(a.Router)

	a.Router.Walk(func(rt *mux.Route, r *mux.Router, ancestors []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; a.cancel() }()

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.httpServer.Shutdown(ctx)
	return nil
}

var ErrNotInitialized = &initError{"server not initialized (call Initialize(cfg) first)"}

type initError struct{ s string }

func (e *initError) Error() string { return e.s }
