// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package byzantine

import (
	"fmt"
	"math/rand"

	"github.com/ChainSafe/alpenglow/internal/log"
	"github.com/ChainSafe/alpenglow/lib/model"
	"github.com/ChainSafe/alpenglow/lib/transition"
	"github.com/ChainSafe/alpenglow/lib/types"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "byzantine"))

// Assignment binds a byzantine validator to its strategy.
type Assignment struct {
	Validator types.ValidatorID `json:"validator"`
	Strategy  Kind              `json:"strategy"`
}

// Assign returns the strategy of every byzantine validator of the
// configuration. Configured strategies are assigned in turn, otherwise
// strategies are drawn from the seed.
func Assign(cfg *model.Config) ([]Assignment, error) {
	assignments := make([]Assignment, 0, len(cfg.Byzantine))
	if len(cfg.Strategies) > 0 {
		for i, id := range cfg.Byzantine {
			kind, err := ParseKind(cfg.Strategies[i%len(cfg.Strategies)])
			if err != nil {
				return nil, fmt.Errorf("assigning strategy to validator %d: %w", id, err)
			}
			assignments = append(assignments, Assignment{Validator: id, Strategy: kind})
		}
	} else {
		random := rand.New(rand.NewSource(int64(cfg.Seed))) //nolint:gosec
		for _, id := range cfg.Byzantine {
			kind := Kinds[random.Intn(len(Kinds))]
			assignments = append(assignments, Assignment{Validator: id, Strategy: kind})
		}
	}

	for _, assignment := range assignments {
		logger.Debugf("validator %d follows the %s strategy", assignment.Validator, assignment.Strategy)
	}
	return assignments, nil
}

// Adversary drives the byzantine validators of a run. It implements
// the transition Adversary interface.
type Adversary struct {
	config      *model.Config
	assignments []Assignment
}

// NewAdversary creates an adversary for the assignments given.
func NewAdversary(cfg *model.Config, assignments []Assignment) *Adversary {
	return &Adversary{
		config:      cfg,
		assignments: assignments,
	}
}

// Assignments returns the strategy assignments of the adversary.
func (a *Adversary) Assignments() []Assignment {
	return a.assignments
}

// Actions returns the byzantine actions of every strategy in use.
func (a *Adversary) Actions(state *model.State) (actions []transition.Action) {
	for _, kind := range Kinds {
		attackers := a.attackers(kind)
		actions = append(actions, kind.Actions(a.config, state, attackers)...)
	}
	return actions
}

// Withholds returns true if the validator follows a withholding strategy.
func (a *Adversary) Withholds(id types.ValidatorID) bool {
	for _, assignment := range a.assignments {
		if assignment.Validator == id {
			return assignment.Strategy.Withholds()
		}
	}
	return false
}

func (a *Adversary) attackers(kind Kind) (ids []types.ValidatorID) {
	for _, assignment := range a.assignments {
		if assignment.Strategy == kind {
			ids = append(ids, assignment.Validator)
		}
	}
	return ids
}
