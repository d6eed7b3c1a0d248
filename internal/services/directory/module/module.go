// Package module wires the directory vertical
package module

import (
	"math/rand"
	"time"

	"fusepair/internal/modkit"
	"fusepair/internal/modkit/repokit"
	"fusepair/internal/services/directory/domain"
	"fusepair/internal/services/directory/repo"
	"fusepair/internal/services/directory/service"
)

// Ports defines the directory module ports
type Ports struct {
	Store domain.StorePort
}

// Module implements the directory module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the directory module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(
		repokit.TxRunner(deps.PG), repo.NewPG(),
		service.Config{Workers: opts.Workers},
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)

	m := &Module{deps: deps}
	m.ports = Ports{Store: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "directory" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
