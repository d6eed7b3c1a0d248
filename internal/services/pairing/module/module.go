// Package module wires the pairing engine
package module

import (
	"math/rand"
	"time"

	"fusepair/internal/core/normalize"
	"fusepair/internal/modkit"
	"fusepair/internal/platform/validate"
	"fusepair/internal/services/pairing/domain"
	"fusepair/internal/services/pairing/service"
)

// PortsIn are the cross-module ports the engine consumes,
// injected via modkit.WithPorts
type PortsIn struct {
	Directory  domain.DirectoryPort
	History    domain.HistoryPort
	Attendance domain.AttendancePort
}

// Ports defines the pairing module ports
type Ports struct {
	Engine *service.Service
}

// Module implements the pairing module
type Module struct {
	deps  modkit.Deps
	name  string
	ports Ports
}

// New constructs the pairing module. Options come from CORE_FUSE_ env vars
// and must name a host alias and output directory
func New(deps modkit.Deps, mopts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("pairing")}, mopts...)...)

	var in PortsIn
	if p, ok := b.Ports.(PortsIn); ok {
		in = p
	}
	if in.Directory == nil || in.History == nil || in.Attendance == nil {
		panic("pairing module requires directory, history, and attendance ports")
	}

	opts := FromConfig(deps.Cfg)
	if err := validate.Struct(opts); err != nil {
		panic(err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	svc := service.New(
		in.Directory, in.History, in.Attendance,
		service.Config{
			Host:      normalize.Alias(opts.Host),
			TestMode:  opts.TestMode,
			OutDir:    opts.OutDir,
			MaxResets: opts.MaxResets,
		},
		rand.New(rand.NewSource(seed)),
	)

	m := &Module{deps: deps, name: b.Name}
	m.ports = Ports{Engine: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
