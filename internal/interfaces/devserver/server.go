package devserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/erp/posconsole/internal/application/collection"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/infrastructure/config"
	"github.com/erp/posconsole/internal/infrastructure/logger"
	"github.com/erp/posconsole/internal/infrastructure/resource"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIPrefix is the path every route is mounted under
const APIPrefix = "/api"

// Server is an in-memory stand-in for the POS backend
type Server struct {
	cfg    config.DevServerConfig
	log    *zap.Logger
	store  *Store
	jwt    *JWTService
	engine *gin.Engine
}

// New builds the server and its routes over ds
func New(cfg config.DevServerConfig, pageSize int, ds Dataset, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = shared.DefaultPageSize
	}
	s := &Server{
		cfg:   cfg,
		log:   log,
		store: NewStore(ds),
		jwt:   NewJWTService(cfg.JWTSecret, cfg.TokenTTL),
	}

	engine := gin.New()
	engine.Use(logger.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group(APIPrefix)
	authHandler := NewAuthHandler(s.jwt, Account{Username: cfg.Username, Password: cfg.Password})
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(AuthMiddleware(s.jwt, log))
	protected.GET("/auth/me", authHandler.Me)

	mount(protected, resource.Serials, s.store.Serials, pageSize, ExportBlob)
	mount(protected, resource.Registrations, s.store.Registrations, pageSize, ExportBlob)
	mount(protected, resource.Claims, s.store.Claims, pageSize, ExportBlob)
	mount(protected, resource.Products, s.store.Products, pageSize, ExportBlob)
	mount(protected, resource.Customers, s.store.Customers, pageSize, ExportBlob)
	mount(protected, resource.Branches, s.store.Branches, pageSize, ExportBlob)
	mount(protected, resource.Distributors, s.store.Distributors, pageSize, ExportBlob)
	mount(protected, resource.Orders, s.store.Orders, pageSize, ExportJSON)
	mount(protected, resource.PurchaseOrders, s.store.PurchaseOrders, pageSize, ExportBlob)

	s.engine = engine
	return s
}

func mount[T shared.Record, D any](g *gin.RouterGroup, res *resource.Resource[T, D], store *collection.LocalAdapter[T, D], pageSize int, shape ExportShape) {
	NewCollectionHandler(res, store, pageSize, shape).Register(g)
}

// Handler returns the gin engine
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store returns the backing store
func (s *Server) Store() *Store {
	return s.store
}

// Run serves on the configured port until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Dev server starting", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down dev server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dev server forced to shutdown: %w", err)
	}
	s.log.Info("Dev server exited gracefully")
	return nil
}

// BuildDataset generates cfg.SeedCount fake records and overlays the seed file when one is set
func BuildDataset(cfg config.DevServerConfig, seed uint64, now time.Time) (Dataset, error) {
	ds := Generate(cfg.SeedCount, seed, now)
	if cfg.SeedFile == "" {
		return ds, nil
	}
	fromFile, err := LoadSeedFile(cfg.SeedFile)
	if err != nil {
		return Dataset{}, err
	}
	return ds.Merge(fromFile), nil
}
