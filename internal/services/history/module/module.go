// Package module wires the history vertical
package module

import (
	"fusepair/internal/modkit"
	"fusepair/internal/modkit/repokit"
	"fusepair/internal/services/history/domain"
	"fusepair/internal/services/history/repo"
	"fusepair/internal/services/history/service"
)

// Ports defines the history module ports
type Ports struct {
	Store domain.StorePort
}

// Module implements the history module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the history module
func New(deps modkit.Deps) *Module {
	svc := service.New(repokit.TxRunner(deps.PG), repo.NewPG())
	m := &Module{deps: deps}
	m.ports = Ports{Store: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "history" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
