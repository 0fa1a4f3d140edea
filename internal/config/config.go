// Package config handles meshspan tool configuration.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshspan/internal/gltfio"
	"github.com/Faultbox/meshspan/internal/logger"
	"github.com/Faultbox/meshspan/pkg/meshconv"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all settings of meshconv and spanview.
type Config struct {
	Convert   ConvertConfig   `yaml:"convert"`
	Import    ImportConfig    `yaml:"import"`
	Output    OutputConfig    `yaml:"output"`
	Materials MaterialsConfig `yaml:"materials"`
	Batch     BatchConfig     `yaml:"batch"`
	Preview   PreviewConfig   `yaml:"preview"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ConvertConfig holds converter options.
type ConvertConfig struct {
	meshconv.Options `yaml:",inline"`

	// Suppress repeated warnings across all meshes of a run, not just per mesh.
	WarnOncePerRun bool `yaml:"warn_once_per_run"`
}

// ImportConfig controls how glTF primitives become source meshes.
type ImportConfig struct {
	SmoothGroup   uint32 `yaml:"smooth_group"`   // Smoothing mask given to every imported face
	KeepNormals   bool   `yaml:"keep_normals"`   // Use NORMAL as explicit per-corner normals
	WeightChannel int    `yaml:"weight_channel"` // UV channel driving synthetic skins, -1 for rigid
}

// OutputConfig holds output settings.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Binary bool   `yaml:"binary"` // Write .glb instead of .gltf
}

// MaterialsConfig points at an optional material library.
type MaterialsConfig struct {
	Library string `yaml:"library"`
}

// BatchConfig controls parallel conversion.
type BatchConfig struct {
	Workers  int  `yaml:"workers"`
	FailFast bool `yaml:"fail_fast"`
}

// PreviewConfig holds spanview window settings.
type PreviewConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	VSync          bool    `yaml:"vsync"`
	FOV            float32 `yaml:"fov"`
	Wireframe      bool    `yaml:"wireframe"`
	LightAzimuth   float32 `yaml:"light_azimuth"`   // Degrees around +Y
	LightElevation float32 `yaml:"light_elevation"` // Degrees above the horizon
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Options: meshconv.DefaultOptions(),
		},
		Import: ImportConfig{
			SmoothGroup:   1,
			WeightChannel: -1,
		},
		Output: OutputConfig{
			Dir:    "out",
			Binary: true,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Preview: PreviewConfig{
			Width:          1280,
			Height:         720,
			VSync:          true,
			FOV:            45,
			LightAzimuth:   45,
			LightElevation: 50,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Validate checks ranges the tools rely on.
func (c *Config) Validate() error {
	o := c.Convert.Options
	switch {
	case o.MaxVertsPerBuffer < 3:
		return fmt.Errorf("%w: max_verts_per_buffer %d is below one triangle", ErrInvalid, o.MaxVertsPerBuffer)
	case o.MaxIndicesPerBuffer < 3:
		return fmt.Errorf("%w: max_indices_per_buffer %d is below one triangle", ErrInvalid, o.MaxIndicesPerBuffer)
	case c.Batch.Workers < 1:
		return fmt.Errorf("%w: batch workers must be positive, got %d", ErrInvalid, c.Batch.Workers)
	case c.Import.WeightChannel >= meshconv.MaxUVChannels:
		return fmt.Errorf("%w: weight channel %d out of range", ErrInvalid, c.Import.WeightChannel)
	}
	if d := o.Dicing; d != nil && (d.MaxFaces < 0 || d.MaxSize < 0 || d.MinFaces < 0) {
		return fmt.Errorf("%w: negative dicing policy %+v", ErrInvalid, *d)
	}
	return nil
}

// ImportOptions converts the import section for gltfio.Import.
func (c *Config) ImportOptions() gltfio.ImportOptions {
	return gltfio.ImportOptions{
		SmoothGroup:   c.Import.SmoothGroup,
		KeepNormals:   c.Import.KeepNormals,
		WeightChannel: c.Import.WeightChannel,
	}
}

// LoggerOptions converts the logging section for logger.Init.
func (c *Config) LoggerOptions() logger.Options {
	opts := logger.Options{Level: c.Logging.Level, Console: true}
	if c.Logging.LogFile != "" {
		opts.File = logger.FileConfig{
			Path:       c.Logging.LogFile,
			MaxSizeMB:  c.Logging.MaxSizeMB,
			MaxBackups: c.Logging.MaxBackups,
			MaxAgeDays: c.Logging.MaxAgeDays,
		}
	}
	return opts
}
