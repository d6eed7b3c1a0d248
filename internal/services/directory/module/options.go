package module

import (
	"fusepair/internal/platform/config"
)

// Options holds configuration options for the directory service
type Options struct {
	Workers int
}

// FromConfig reads the directory options from config with CORE_FUSE_ prefix
func FromConfig(cfg config.Conf) Options {
	fc := cfg.Prefix("CORE_FUSE_")
	return Options{
		Workers: fc.MayInt("LOOKUP_WORKERS", 10),
	}
}
