// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package services

import (
	"fmt"
	"reflect"

	"github.com/ChainSafe/alpenglow/internal/log"
)

// Service must be implemented by all Services
type Service interface {
	Start() error
	Stop() error
}

// ServiceRegistry starts and stops the auxiliary servers of a run
// in registration order.
type ServiceRegistry struct {
	services     map[reflect.Type]Service
	serviceTypes []reflect.Type
	started      int
	logger       log.LeveledLogger
}

// NewServiceRegistry creates an empty registry
func NewServiceRegistry(logger log.LeveledLogger) *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[reflect.Type]Service),
		logger:   logger,
	}
}

// RegisterService stores a new service in the map. If a service of that type has been seen
// before, the new service is ignored.
func (s *ServiceRegistry) RegisterService(service Service) {
	kind := reflect.TypeOf(service)
	if _, exists := s.services[kind]; exists {
		s.logger.Warnf("Tried to add service type %s that has already been seen", kind)
		return
	}
	s.services[kind] = service
	s.serviceTypes = append(s.serviceTypes, kind)
}

// StartAll calls `Service.Start()` for all registered Services. If a
// service fails to start, the services already started are stopped.
func (s *ServiceRegistry) StartAll() error {
	s.logger.Debugf("Starting Services: %v", s.serviceTypes)
	for _, typ := range s.serviceTypes {
		s.logger.Debugf("Starting service %s", typ)
		err := s.services[typ].Start()
		if err != nil {
			s.StopAll()
			return fmt.Errorf("starting service %s: %w", typ, err)
		}
		s.started++
	}
	s.logger.Debug("All Services started.")
	return nil
}

// StopAll calls `Service.Stop()` for the started Services, in the
// reverse order of their start.
func (s *ServiceRegistry) StopAll() {
	for ; s.started > 0; s.started-- {
		typ := s.serviceTypes[s.started-1]
		s.logger.Debugf("Stopping service %s", typ)
		err := s.services[typ].Stop()
		if err != nil {
			s.logger.Errorf("Error stopping service %s: %s", typ, err)
		}
	}
	s.logger.Debug("All Services stopped.")
}
