// Package server exposes conversion, validation and the profile archive over
// HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chrissnell/snowprofile/internal/archive"
	"github.com/chrissnell/snowprofile/internal/log"
	"github.com/chrissnell/snowprofile/pkg/caaml"
	"github.com/chrissnell/snowprofile/pkg/config"
	"github.com/chrissnell/snowprofile/pkg/responseformat"
)

// Controller represents the HTTP service controller
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	serverConfig   config.ServerData
	caamlConfig    config.CAAMLData
	defaultVersion caaml.Version
	Server         http.Server
	store          *archive.Store
	metrics        *Metrics
	formatter      *responseformat.Formatter
}

// NewController creates a new HTTP service controller. The archive routes
// are only served when store is not nil.
func NewController(ctx context.Context, wg *sync.WaitGroup, sc config.ServerData, cc config.CAAMLData, store *archive.Store) (*Controller, error) {
	version, err := caaml.ParseVersion(cc.DefaultVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid default CAAML version: %w", err)
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if sc.ListenAddr == "" {
		log.Infof("server.listen-addr not provided; defaulting to %s (all interfaces)", config.DefaultListenAddr)
		sc.ListenAddr = config.DefaultListenAddr
	}
	if sc.Port == 0 {
		log.Infof("server.port not provided; defaulting to %d", config.DefaultPort)
		sc.Port = config.DefaultPort
	}
	if sc.MaxBodyBytes <= 0 {
		sc.MaxBodyBytes = config.DefaultMaxBodyBytes
	}

	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		serverConfig:   sc,
		caamlConfig:    cc,
		defaultVersion: version,
		store:          store,
		metrics:        NewMetrics(),
		formatter:      responseformat.NewFormatter(),
	}

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", sc.ListenAddr, sc.Port)
	ctrl.Server.Handler = ctrl.Router()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the HTTP server and shuts it down when the
// controller context is cancelled
func (c *Controller) StartController() error {
	log.Infow("starting snow profile service", "addr", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.serverConfig.Cert != "" && c.serverConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.serverConfig.Cert, c.serverConfig.Key); err != http.ErrServerClosed {
				log.Errorf("HTTP server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("HTTP server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the snow profile service...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("HTTP server shutdown: %v", err)
		}
	}()

	return nil
}

// Router configures the HTTP router with all endpoints
func (c *Controller) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.logMiddleware)

	router.HandleFunc("/healthz", c.health).Methods(http.MethodGet)
	router.HandleFunc("/convert", c.convert).Methods(http.MethodPost)
	router.HandleFunc("/validate", c.validate).Methods(http.MethodPost)

	if c.store != nil {
		router.HandleFunc("/profiles", c.createProfile).Methods(http.MethodPost)
		router.HandleFunc("/profiles", c.listProfiles).Methods(http.MethodGet)
		router.HandleFunc("/profiles/{id}", c.getProfile).Methods(http.MethodGet)
		router.HandleFunc("/profiles/{id}", c.deleteProfile).Methods(http.MethodDelete)
		router.HandleFunc("/profiles/{id}/caaml", c.getProfileCAAML).Methods(http.MethodGet)
		router.HandleFunc("/profiles/{id}/summary", c.getProfileSummary).Methods(http.MethodGet)
	}

	if c.serverConfig.EnableMetrics {
		router.Handle("/metrics", promhttp.HandlerFor(c.metrics.registry, promhttp.HandlerOpts{
			ErrorHandling: promhttp.HTTPErrorOnError,
		})).Methods(http.MethodGet)
	}

	return router
}

// statusRecorder captures the status code and size of a response
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// logMiddleware logs every request and records its duration
func (c *Controller) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		elapsed := time.Since(start)

		route := r.URL.Path
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		c.metrics.requestDuration.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Observe(elapsed.Seconds())

		log.LogHTTPRequest(log.HTTPLogEntry{
			Method:     r.Method,
			Path:       r.URL.Path,
			Status:     rec.status,
			Duration:   elapsed,
			Size:       rec.size,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}
