package config

import (
	"flag"

	"github.com/Faultbox/meshspan/pkg/meshconv"
)

// Flags are the command-line overrides shared by the tools.
// Zero values leave the file or default setting untouched.
type Flags struct {
	Config      string
	Debug       bool
	OutDir      string
	Text        bool
	Workers     int
	Materials   string
	MaxFaces    int
	MaxSize     float64
	NoPreshade  bool
	DupTwoSided bool
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.OutDir, "out", "", "Output directory")
	fs.BoolVar(&f.Text, "text", false, "Write .gltf instead of .glb")
	fs.IntVar(&f.Workers, "workers", 0, "Parallel conversions")
	fs.StringVar(&f.Materials, "materials", "", "Material library (YAML)")
	fs.IntVar(&f.MaxFaces, "max-faces", 0, "Dice spans above this many faces")
	fs.Float64Var(&f.MaxSize, "max-size", 0, "Dice spans larger than this extent")
	fs.BoolVar(&f.NoPreshade, "no-preshade", false, "Disable preshading")
	fs.BoolVar(&f.DupTwoSided, "dup-two-sided", false, "Duplicate faces of two-sided materials")
}

// apply writes the set flags over cfg.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.OutDir != "" {
		cfg.Output.Dir = f.OutDir
	}
	if f.Text {
		cfg.Output.Binary = false
	}
	if f.Workers > 0 {
		cfg.Batch.Workers = f.Workers
	}
	if f.Materials != "" {
		cfg.Materials.Library = f.Materials
	}
	if f.MaxFaces > 0 || f.MaxSize > 0 {
		if cfg.Convert.Dicing == nil {
			cfg.Convert.Dicing = &meshconv.DicingPolicy{}
		}
		policy := cfg.Convert.Dicing
		if f.MaxFaces > 0 {
			policy.MaxFaces = f.MaxFaces
		}
		if f.MaxSize > 0 {
			policy.MaxSize = float32(f.MaxSize)
		}
	}
	if f.NoPreshade {
		cfg.Convert.DoPreshading = false
	}
	if f.DupTwoSided {
		cfg.Convert.Dup2SidedMaterialFaces = true
	}
}
