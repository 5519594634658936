// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Server is an HTTP server shut down gracefully when its run context
// is canceled.
type Server struct {
	name       string
	address    string
	addressSet chan struct{}
	handler    http.Handler
	logger     Logger
	optional   optionalSettings
}

// New creates a new HTTP server with a name, listening on
// the address specified and using a specific handler. The
// empty address lets the OS pick a free port.
func New(name, address string, handler http.Handler,
	logger Logger, options ...Option) *Server {
	var optional optionalSettings
	for _, option := range options {
		option(&optional)
	}

	return &Server{
		name:       name,
		address:    address,
		addressSet: make(chan struct{}),
		handler:    handler,
		logger:     logger,
		optional:   optional,
	}
}

// Run runs the HTTP server until the context is canceled.
// The ready channel is closed once the server listens, and
// the exit error, nil after a clean shutdown, is sent on done.
func (s *Server) Run(ctx context.Context, ready chan<- struct{}, done chan<- error) {
	optional := s.optional
	optional.setDefaults()

	server := http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadTimeout:       optional.readTimeout,
		ReadHeaderTimeout: optional.readHeaderTimeout,
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		close(s.addressSet)
		done <- fmt.Errorf("listening for %s http server: %w", s.name, err)
		return
	}
	s.address = listener.Addr().String()
	close(s.addressSet)

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), optional.shutdownTimeout)
		defer cancel()
		shutdownErr <- server.Shutdown(shutdownCtx)
	}()

	s.logger.Info(s.name + " http server listening on " + s.address)
	close(ready)

	err = server.Serve(listener)
	if !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error(s.name + " http server crashed: " + err.Error())
		done <- err
		return
	}

	err = <-shutdownErr
	if err != nil {
		s.logger.Warn(s.name + " http server shutdown failed: " + err.Error())
		err = fmt.Errorf("shutting down %s http server: %w", s.name, err)
	} else {
		s.logger.Info(s.name + " http server shut down")
	}
	done <- err
}

// GetAddress blocks until the server listens and returns its
// address. It returns the configured address if listening failed.
func (s *Server) GetAddress() (address string) {
	<-s.addressSet
	return s.address
}
