package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Server runs an http.Server.
type Server interface {
	Serve() error
	// ServeWithReadyCallback calls onReady once the listener is bound.
	ServeWithReadyCallback(onReady func()) error
	Shutdown(ctx context.Context) error
	// Addr returns the bound address, or the configured one before Serve.
	Addr() string
}

type server struct {
	httpSrv *http.Server
	log     *zap.Logger

	mu       sync.Mutex
	listener net.Listener
}

func newServer(log *zap.Logger, conf Config, handler http.Handler) Server {
	return &server{
		httpSrv: &http.Server{
			Addr:              ":" + strconv.Itoa(conf.Port),
			Handler:           handler,
			ReadHeaderTimeout: conf.Connection.ReadHeaderTimeout,
			ReadTimeout:       conf.Connection.ReadTimeout,
			WriteTimeout:      conf.Connection.WriteTimeout,
			IdleTimeout:       conf.Connection.IdleTimeout,
			MaxHeaderBytes:    conf.Connection.MaxHeaderBytes,
			ErrorLog:          zap.NewStdLog(log.Named("http")),
		},
		log: log,
	}
}

func (s *server) Serve() error {
	return s.ServeWithReadyCallback(nil)
}

func (s *server) ServeWithReadyCallback(onReady func()) error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		s.log.Error("failed to listen", zap.String("addr", s.httpSrv.Addr), zap.Error(err))
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.log.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))
	if onReady != nil {
		onReady()
	}

	if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("HTTP server stopped with error", zap.Error(err))
		return err
	}
	return nil
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpSrv.Addr
}
