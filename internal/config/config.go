// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Model    ModelConfig    `yaml:"model"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// ModelConfig selects what the viewer renders.
type ModelConfig struct {
	// Path to an OBJ model. Empty renders the procedural can instead.
	Path string `yaml:"path"`

	// SearchPaths are directories tried in order when resolving model
	// and material files.
	SearchPaths []string `yaml:"search_paths"`

	// Textures that can be cycled onto the can with the T key.
	Textures []string `yaml:"textures"`

	Can CanConfig `yaml:"can"`
}

// CanConfig holds the procedural can shape parameters.
type CanConfig struct {
	BodyRadius float32 `yaml:"body_radius"`
	CapRadius  float32 `yaml:"cap_radius"`
	Sides      int     `yaml:"sides"`
	Height     float32 `yaml:"height"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1024,
			Height:     768,
			Fullscreen: false,
			VSync:      true,
		},
		Model: ModelConfig{
			SearchPaths: []string{"."},
			Can: CanConfig{
				BodyRadius: 1.0,
				CapRadius:  0.8,
				Sides:      48,
				Height:     3.0,
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
