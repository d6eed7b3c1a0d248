package module

import (
	"fusepair/internal/platform/config"
)

// Options holds configuration options for the pairing engine
type Options struct {
	Host      string `json:"host" validate:"required"`
	TestMode  bool   `json:"test_mode"`
	OutDir    string `json:"out_dir" validate:"required"`
	MaxResets int    `json:"max_resets" validate:"min=1,max=10"`
	Seed      int64  `json:"seed"`
}

// FromConfig reads the engine options from config with CORE_FUSE_ prefix
func FromConfig(cfg config.Conf) Options {
	fc := cfg.Prefix("CORE_FUSE_")
	return Options{
		Host:      fc.MayString("HOST", ""),
		TestMode:  fc.MayBool("TEST_MODE", false),
		OutDir:    fc.MayString("OUT_DIR", "./match_files"),
		MaxResets: fc.MayInt("MAX_RESETS", 5),
		Seed:      int64(fc.MayInt("SEED", 0)),
	}
}
