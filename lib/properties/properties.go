// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package properties

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ChainSafe/alpenglow/internal/log"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/types"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "properties"))

// ErrUnknownProperty is returned when selecting a property that does not exist.
var ErrUnknownProperty = errors.New("unknown property")

// Kind tells when a property is checked.
type Kind uint8

const (
	// Always properties must hold in every reachable state.
	Always Kind = iota
	// Eventually properties must hold in every terminal state.
	Eventually
)

func (k Kind) String() string {
	if k == Always {
		return "always"
	}
	return "eventually"
}

// Property names
const (
	Safety              = "safety"
	ByzantineResilience = "byzantine_resilience"
	CertificateValidity = "certificate_validity"
	ErasureAvailability = "erasure_availability"
	BoundedFinalization = "bounded_finalization"
	EconomicInvariants  = "economic_invariants"
	Progress            = "progress"
	FastPath            = "fast_path"
	LeaderFairness      = "leader_fairness"
	EconomicEquilibrium = "economic_equilibrium"
)

// Property is a named check of the protocol.
type Property struct {
	Name  string
	Kind  Kind
	check func(s *Suite, state *model.State) error
}

// Violation is a failed property check.
type Violation struct {
	Property string `json:"property"`
	Reason   string `json:"reason"`
}

func (v Violation) String() string {
	return v.Property + ": " + v.Reason
}

// All returns every property, always properties first.
func All() []Property {
	return []Property{
		{Name: Safety, Kind: Always, check: checkSafety},
		{Name: ByzantineResilience, Kind: Always, check: checkByzantineResilience},
		{Name: CertificateValidity, Kind: Always, check: checkCertificateValidity},
		{Name: ErasureAvailability, Kind: Always, check: checkErasureAvailability},
		{Name: BoundedFinalization, Kind: Always, check: checkBoundedFinalization},
		{Name: EconomicInvariants, Kind: Always, check: checkEconomicInvariants},
		{Name: Progress, Kind: Eventually, check: checkProgress},
		{Name: FastPath, Kind: Eventually, check: checkFastPath},
		{Name: LeaderFairness, Kind: Eventually, check: (*Suite).checkFairness},
		{Name: EconomicEquilibrium, Kind: Eventually, check: checkEquilibrium},
	}
}

// ByName returns the properties with the names given, in the order of All.
// No name selects every property.
func ByName(names ...string) ([]Property, error) {
	all := All()
	if len(names) == 0 {
		return all, nil
	}

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	selected := make([]Property, 0, len(names))
	for _, property := range all {
		if _, ok := wanted[property.Name]; ok {
			selected = append(selected, property)
			delete(wanted, property.Name)
		}
	}
	for _, name := range names {
		if _, ok := wanted[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProperty, name)
		}
	}
	return selected, nil
}

// Suite checks a selection of properties for one configuration.
// It is safe for concurrent use.
type Suite struct {
	config     *model.Config
	properties []Property

	mutex     sync.Mutex
	synthetic map[string]map[types.ValidatorID]int
}

// NewSuite creates a suite checking the properties selected in the
// exploration settings of the configuration.
func NewSuite(cfg *model.Config) (*Suite, error) {
	properties, err := ByName(cfg.Exploration.Properties...)
	if err != nil {
		return nil, err
	}
	return &Suite{
		config:     cfg,
		properties: properties,
		synthetic:  make(map[string]map[types.ValidatorID]int),
	}, nil
}

// Properties returns the properties checked by the suite.
func (s *Suite) Properties() []Property {
	return s.properties
}

// CheckState checks the always properties in the state.
func (s *Suite) CheckState(state *model.State) []Violation {
	return s.run(state, Always)
}

// CheckTerminal checks the eventually properties in a terminal state.
func (s *Suite) CheckTerminal(state *model.State) []Violation {
	return s.run(state, Eventually)
}

func (s *Suite) run(state *model.State, kind Kind) (violations []Violation) {
	for _, property := range s.properties {
		if property.Kind != kind {
			continue
		}
		if err := property.check(s, state); err != nil {
			logger.Debugf("property %s violated at time %d: %s", property.Name, state.Time, err)
			violations = append(violations, Violation{
				Property: property.Name,
				Reason:   err.Error(),
			})
		}
	}
	return violations
}
