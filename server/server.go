package server

import (
	"context"
	"net/http"
	"time"

	"cast_check/analysis"
	"cast_check/cache"
	"cast_check/config"
	"cast_check/registry"
	"cast_check/share/semaphore"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	websocketUpgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	websockEmptyClosure = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
)

type Server struct {
	registry *registry.Registry
	specs    []analysis.Spec
	workers  int

	cache   *cache.Storage
	metrics *metrics
	queue   *jobQueue
}

func New(cfg *config.Config, reg *registry.Registry) *Server {
	s := &Server{
		registry: reg,
		specs:    reg.Specs(),
		workers:  cfg.Workers,
		cache:    cache.NewStorage(cfg.CacheTTL),
		metrics:  newMetrics(),
	}
	s.queue = newJobQueue(semaphore.New(cfg.MaxJobs), s.metrics)
	return s
}

func (s *Server) Route(g *gin.Engine) {
	g.Use(gin.ErrorLogger())
	g.Use(gin.Recovery())

	g.POST("/api/analyze", s.routeAnalyze)
	g.GET("/api/abilities", s.routeAbilities)
	g.GET("/analysis", s.routeAnalysis)
	g.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	g := gin.New()
	s.Route(g)

	go s.queue.Work(ctx, s.runJob)
	go s.purgeCache(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: g,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.WithStack(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.WithStack(srv.Shutdown(shutdownCtx))
}

func (s *Server) purgeCache(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			left := s.cache.Purge()
			logrus.Debugf("cache: %d entries", left)
		case <-ctx.Done():
			return
		}
	}
}

func writeJSON(c *gin.Context, status int, v interface{}) {
	b, err := jsoniter.Marshal(v)
	if err != nil {
		logrus.Errorf("%+v", errors.WithStack(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json; charset=utf-8", b)
}

func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logrus.Errorf("%+v", err)
	}

	writeJSON(c, status, gin.H{"error": err.Error()})
}

func (s *Server) routeAnalyze(c *gin.Context) {
	body, err := readBody(c.Request.Body)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := s.analyze(c.Request.Context(), body, nil)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, resp)
}

func (s *Server) routeAbilities(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"abilities": s.registry.Entries})
}
