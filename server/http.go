package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/exvulsec/safeguard/config"
	"github.com/exvulsec/safeguard/guard"
	"github.com/exvulsec/safeguard/http/controller"
	"github.com/exvulsec/safeguard/middleware"
)

type HTTPServer struct {
	srv     *http.Server
	routers *gin.Engine
}

func NewHTTPServer(pipeline *guard.Pipeline) HTTPServer {
	r := gin.Default()
	r.Use(cors.Default())
	addRouters(r, pipeline)
	s := HTTPServer{routers: r}

	s.srv = &http.Server{
		Addr: fmt.Sprintf("%s:%d",
			config.Conf.HTTPServer.Host,
			config.Conf.HTTPServer.Port),
		Handler: s.routers,
	}
	return s
}

func addRouters(r *gin.Engine, pipeline *guard.Pipeline) {
	api := r.Group("/api/v1")
	if config.Conf.HTTPServer.APIKey != "" {
		api.Use(middleware.CheckAPIKEY())
	}
	controllers := []controller.Controller{
		&controller.GuardController{Pipeline: pipeline},
	}
	for _, c := range controllers {
		c.Routers(api)
	}
}

func (s *HTTPServer) Run() {
	logrus.Info("listen addr: ", s.srv.Addr)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Errorf("listen: %v", err)
		}
	}()
	s.gracefullyShutDown()
}

func (s *HTTPServer) gracefullyShutDown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// give in-flight requests 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		logrus.Info("server forced to shutdown:", err)
	}

	logrus.Info("server closed")
}
