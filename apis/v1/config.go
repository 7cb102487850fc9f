package v1

// Config is the optional configuration file. Every field may be overridden from the command line.
type Config struct {
	Kind string `yaml:"kind,omitempty" json:"kind,omitempty" validate:"omitempty,eq=Config"`

	// Tools maps a logical tool name (tar, 7z, pigz, ...) to the executable used for it.
	Tools map[string]string `yaml:"tools,omitempty" json:"tools,omitempty" validate:"omitempty,dive,keys,tool,endkeys,required"`

	// Threads is forwarded to tools that parallelize (default: number of CPUs).
	Threads *int `yaml:"threads,omitempty" json:"threads,omitempty" validate:"omitempty,min=1"`

	Quiet *bool `yaml:"quiet,omitempty" json:"quiet,omitempty"`
}
