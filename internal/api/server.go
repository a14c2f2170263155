// Package api exposes host control and telemetry over HTTP.
package api

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"codeberg.org/mutker/hostctl/internal/auth"
	"codeberg.org/mutker/hostctl/internal/control"
	"codeberg.org/mutker/hostctl/internal/errors"
	"codeberg.org/mutker/hostctl/internal/launcher"
	"codeberg.org/mutker/hostctl/internal/logger"
	"codeberg.org/mutker/hostctl/internal/observability"
	"codeberg.org/mutker/hostctl/internal/telemetry"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controller performs control actions.
type Controller interface {
	SetVolume(ctx context.Context, value int) control.Outcome
	Volume(ctx context.Context) control.Outcome
	ToggleMute(ctx context.Context) control.Outcome
	SetBrightness(ctx context.Context, value int) control.Outcome
	Brightness(ctx context.Context) control.Outcome
	ToggleTheme(ctx context.Context) control.Outcome
	Media(ctx context.Context, action string) control.Outcome
	Power(ctx context.Context, action string) control.Outcome
}

// Monitor produces telemetry snapshots.
type Monitor interface {
	Snapshot(ctx context.Context) telemetry.Snapshot
}

// Launcher lists and starts configured targets.
type Launcher interface {
	List() ([]launcher.Entry, error)
	Launch(ctx context.Context, id string) error
}

// Options configures the HTTP surface.
type Options struct {
	StaticDir      string
	CORSOrigins    []string
	ProtectControl bool
}

// Server wires handlers to the domain components.
type Server struct {
	control  Controller
	monitor  Monitor
	launcher Launcher
	auth     auth.Validator
	opts     Options
	log      logger.Logger
}

func New(ctrl Controller, monitor Monitor, l Launcher, validator auth.Validator, opts Options) *Server {
	return &Server{
		control:  ctrl,
		monitor:  monitor,
		launcher: l,
		auth:     validator,
		opts:     opts,
		log:      logger.New("api"),
	}
}

// Handler builds the gin engine.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		observability.RequestLogger(logger.Zerolog()),
		observability.RequestMetricsMiddleware(),
	)

	if len(s.opts.CORSOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = s.opts.CORSOrigins
		cfg.AllowHeaders = append(cfg.AllowHeaders, auth.Header)
		router.Use(cors.New(cfg))
	}

	if s.opts.StaticDir != "" {
		router.StaticFile("/", filepath.Join(s.opts.StaticDir, "index.html"))
		router.Static("/static", s.opts.StaticDir)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/config", s.listTargets)
	router.POST("/launch/:id", auth.Require(s.auth), s.launch)

	system := router.Group("/system")
	system.GET("/status", s.status)
	system.GET("/monitoring", s.monitoring)

	controls := system.Group("")
	if s.opts.ProtectControl {
		controls.Use(auth.Require(s.auth))
	}
	controls.POST("/volume", s.setVolume)
	controls.POST("/mute", s.toggleMute)
	controls.POST("/brightness", s.setBrightness)
	controls.POST("/media", s.media)
	controls.POST("/theme", s.toggleTheme)
	controls.POST("/power", s.power)

	return router
}

// NewHTTPServer returns an http.Server with conservative timeouts. Write
// timeout leaves room for a full telemetry snapshot.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}

// StatusCode maps an outcome kind to its HTTP status.
func StatusCode(kind control.ErrorKind) int {
	switch kind {
	case control.KindNone:
		return http.StatusOK
	case control.KindClient:
		return http.StatusBadRequest
	case control.KindNotFound:
		return http.StatusNotFound
	case control.KindUnauthorized:
		return http.StatusForbidden
	case control.KindUnavailable:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeOutcome(c *gin.Context, out control.Outcome) {
	if !out.OK {
		c.JSON(StatusCode(out.Kind), gin.H{"ok": false, "error": out.Error})
		return
	}

	body := gin.H{"ok": true}
	if out.Field != "" {
		body[out.Field] = out.Value
	}
	c.JSON(http.StatusOK, body)
}

func writeError(c *gin.Context, err error) {
	out := control.FromError(err)
	if appErr, ok := err.(errors.Error); ok && out.Kind == control.KindExecution {
		logger.ErrorWithCode(appErr).Str("path", c.FullPath()).Msg("Request failed")
	}
	writeOutcome(c, out)
}
