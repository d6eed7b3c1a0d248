// Package module wires the attendance vertical
package module

import (
	"fusepair/internal/modkit"
	"fusepair/internal/modkit/repokit"
	"fusepair/internal/services/attendance/domain"
	"fusepair/internal/services/attendance/repo"
	"fusepair/internal/services/attendance/service"
)

// Ports defines the attendance module ports
type Ports struct {
	Intake domain.IntakePort
}

// Module implements the attendance module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the attendance module
func New(deps modkit.Deps) *Module {
	svc := service.New(repokit.TxRunner(deps.PG), repo.NewPG())
	m := &Module{deps: deps}
	m.ports = Ports{Intake: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "attendance" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
