package internal

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	FaceitApiKey  string  `env:"FACEIT_API_KEY,required=true" validate:"required"`
	FaceitBaseURL string  `env:"FACEIT_BASE_URL,default=https://open.faceit.com/data/v4" validate:"url"`
	FaceitRate    float64 `env:"FACEIT_RATE_PER_SECOND,default=4" validate:"gt=0"`
	FaceitBurst   int     `env:"FACEIT_BURST,default=8" validate:"gt=0"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true" validate:"required"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`

	RequiredPlayers int           `env:"REQUIRED_PLAYERS,default=10" validate:"gte=2"`
	SessionTTL      time.Duration `env:"SESSION_TTL,default=30m" validate:"gt=0"`
	LookupTimeout   time.Duration `env:"LOOKUP_TIMEOUT,default=10s" validate:"gt=0"`
	RenderTimeout   time.Duration `env:"RENDER_TIMEOUT,default=5s" validate:"gt=0"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL,default=1m" validate:"gt=0"`

	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=5s" validate:"gt=0"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	BufferSize           int           `env:"BUFFER_SIZE,default=256" validate:"gt=0"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=16" validate:"gte=0"`

	JournalBatchSize     int           `env:"JOURNAL_BATCH_SIZE,default=16" validate:"gt=0"`
	JournalFlushInterval time.Duration `env:"JOURNAL_FLUSH_INTERVAL,default=2s" validate:"gt=0"`

	DebugPort       int  `env:"DEBUG_PORT,default=8081"`
	EnableInspector bool `env:"ENABLE_INSPECTOR,default=false"`
}

// Validate applies the struct tag rules plus the ones tags cannot
// express.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	// Two teams of equal size need an even roster.
	if c.RequiredPlayers%2 != 0 {
		return fmt.Errorf("REQUIRED_PLAYERS must be even, got %d", c.RequiredPlayers)
	}
	return nil
}

// TeamSize is half the roster, the fixed size of each side.
func (c Config) TeamSize() int {
	return c.RequiredPlayers / 2
}
