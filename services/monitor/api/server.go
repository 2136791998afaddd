package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iulianpascalau/device-health-check/services/monitor/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

// APIKeyHeader is the header holding the service key on every request
const APIKeyHeader = "X-Api-Key"

const shutdownTimeout = 5 * time.Second

var log = logger.GetOrCreate("api")

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	storage        Storage
	serviceKey     string
	listenAddr     string
	generalHandler func(http.Handler) http.Handler
	getTime        func() time.Time
	mut            sync.RWMutex
	wg             sync.WaitGroup
}

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ServiceKeyApi  string
	ListenAddress  string
	Storage        Storage
	GeneralHandler func(http.Handler) http.Handler
}

type checkSummary struct {
	Name       string                 `json:"name"`
	Host       string                 `json:"host"`
	Status     string                 `json:"status"`
	ExitCode   int                    `json:"exitCode"`
	Output     string                 `json:"output"`
	Metrics    []common.PerfdataValue `json:"metrics"`
	RecordedAt int64                  `json:"recordedAt"`
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Storage) {
		return nil, errors.New("storage is required")
	}
	if args.GeneralHandler == nil {
		return nil, errors.New("nil http handler")
	}
	if len(args.ServiceKeyApi) == 0 {
		return nil, errors.New("empty service key")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())

	s := &server{
		router:         router,
		storage:        args.Storage,
		serviceKey:     args.ServiceKeyApi,
		listenAddr:     args.ListenAddress,
		generalHandler: args.GeneralHandler,
		getTime:        time.Now,
	}

	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	api := s.router.Group("/api")
	api.Use(s.authAPIKey())
	{
		api.POST("/report", s.handleReport)
		api.GET("/checks", s.handleGetChecks)
		api.GET("/checks/:name/history", s.handleGetCheckHistory)
		api.DELETE("/checks/:name", s.handleDeleteCheck)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}

// Start listens and serves connections
func (s *server) Start() error {
	handler := s.generalHandler(s.router)

	s.mut.Lock()
	defer s.mut.Unlock()

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return err
	}
	s.listenAddr = ln.Addr().String()
	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: handler,
	}

	httpServer := s.httpServer
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", ln.Addr().String())

		errServe := httpServer.Serve(ln)
		if errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			log.Error("http server failed", "error", errServe)
		}
	}()

	return nil
}

// Address returns the actual listen address
func (s *server) Address() string {
	s.mut.RLock()
	defer s.mut.RUnlock()

	return s.listenAddr
}

// ServeHTTP dispatches the request to the mounted routes
func (s *server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.generalHandler(s.router).ServeHTTP(w, req)
}

// Close gracefully stops the server
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.mut.RLock()
	httpServer := s.httpServer
	s.mut.RUnlock()

	if httpServer != nil {
		err := httpServer.Shutdown(ctx)
		if err != nil {
			return err
		}
	}
	s.wg.Wait()

	return nil
}

func (s *server) authAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key != s.serviceKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *server) handleReport(c *gin.Context) {
	var payload common.CheckReport
	err := c.ShouldBindJSON(&payload)
	if err != nil || len(payload.Check) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	log.Debug("received report", "sender", c.Request.RemoteAddr, "check", payload.Check,
		"status", payload.Status, "num metrics", len(payload.Metrics))

	err = s.storage.SaveReport(c.Request.Context(), payload, s.getTime().Unix())
	if err != nil {
		log.Warn("failed to save report", "check", payload.Check, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleGetChecks(c *gin.Context) {
	results, err := s.storage.GetLatestChecks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]checkSummary, 0, len(results))
	for _, r := range results {
		if len(r.History) == 0 {
			continue
		}

		latest := r.History[len(r.History)-1]
		out = append(out, checkSummary{
			Name:       r.Name,
			Host:       r.Host,
			Status:     latest.Status,
			ExitCode:   latest.ExitCode,
			Output:     latest.Output,
			Metrics:    latest.Metrics,
			RecordedAt: latest.RecordedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"checks": out})
}

func (s *server) handleGetCheckHistory(c *gin.Context) {
	name := c.Param("name")
	hist, err := s.storage.GetCheckHistory(c.Request.Context(), name)
	if errors.Is(err, common.ErrCheckNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, hist)
}

func (s *server) handleDeleteCheck(c *gin.Context) {
	name := c.Param("name")
	err := s.storage.DeleteCheck(c.Request.Context(), name)
	if errors.Is(err, common.ErrCheckNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *server) IsInterfaceNil() bool {
	return s == nil
}
