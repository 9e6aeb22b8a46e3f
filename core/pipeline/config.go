package pipeline

// Config holds pipeline-level settings.
type Config struct {
	// MaxStages bounds how many named stages one run may hold.
	MaxStages int `mapstructure:"max_stages" default:"100"`
}
