package formstate

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/listkeys"
)

// DefaultIntentName is the reserved form field that carries the serialized
// intent when Config.IntentName is empty.
const DefaultIntentName = "__intent__"

// DefaultMaxListIndex bounds list indices when Config.MaxListIndex is zero.
const DefaultMaxListIndex = 1000

// KeyStrategy names a built-in list key generator.
type KeyStrategy string

const (
	// KeyStrategyUUID issues random UUID keys.
	KeyStrategyUUID KeyStrategy = "uuid"
	// KeyStrategySequence issues increasing decimal keys starting at zero.
	KeyStrategySequence KeyStrategy = "sequence"
)

// ErrUnknownKeyStrategy indicates a configuration naming an unsupported key
// strategy.
var ErrUnknownKeyStrategy = errors.New("formstate: unknown key strategy")

// Config is threaded through every entry point of the package.
type Config struct {
	// IntentName is the field that carries the serialized intent.
	IntentName string
	// KeyStrategy selects the generator used when Keys is nil.
	KeyStrategy KeyStrategy
	// Keys issues reset keys and list item keys.
	Keys listkeys.Generator
	// MaxListIndex is the largest list index an intent may carry and the
	// furthest a submitted field name may write past the end of a list.
	// Larger intents count as no intent; such fields are dropped.
	MaxListIndex int
}

// DefaultConfig returns the documented defaults: the "__intent__" field and
// UUID keys.
func DefaultConfig() Config {
	return Config{
		IntentName:   DefaultIntentName,
		KeyStrategy:  KeyStrategyUUID,
		Keys:         listkeys.UUIDGenerator{},
		MaxListIndex: DefaultMaxListIndex,
	}
}

// Resolve fills empty fields with defaults and builds the generator named by
// KeyStrategy when Keys is not set.
func (c Config) Resolve() (Config, error) {
	if c.IntentName == "" {
		c.IntentName = DefaultIntentName
	}
	if c.MaxListIndex <= 0 {
		c.MaxListIndex = DefaultMaxListIndex
	}
	if c.Keys != nil {
		return c, nil
	}
	switch KeyStrategy(strings.ToLower(string(c.KeyStrategy))) {
	case "", KeyStrategyUUID:
		c.KeyStrategy = KeyStrategyUUID
		c.Keys = listkeys.UUIDGenerator{}
	case KeyStrategySequence:
		c.KeyStrategy = KeyStrategySequence
		c.Keys = listkeys.NewSequence(0)
	default:
		return c, fmt.Errorf("%w: %q", ErrUnknownKeyStrategy, c.KeyStrategy)
	}
	return c, nil
}

// withDefaults is Resolve for internal callers; an unknown strategy falls back
// to UUID keys.
func (c Config) withDefaults() Config {
	resolved, err := c.Resolve()
	if err != nil {
		resolved.Keys = listkeys.UUIDGenerator{}
	}
	return resolved
}

type fileConfig struct {
	IntentName   string `yaml:"intent_name"`
	KeyStrategy  string `yaml:"key_strategy"`
	MaxListIndex int    `yaml:"max_list_index"`
}

// LoadConfig reads a YAML document such as:
//
//	intent_name: __intent__
//	key_strategy: sequence
//	max_list_index: 500
//
// An empty document yields DefaultConfig.
func LoadConfig(r io.Reader) (Config, error) {
	var file fileConfig
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("formstate: decode config: %w", err)
	}
	return Config{
		IntentName:   file.IntentName,
		KeyStrategy:  KeyStrategy(file.KeyStrategy),
		MaxListIndex: file.MaxListIndex,
	}.Resolve()
}

type envConfig struct {
	IntentName   string `env:"FORMSTATE_INTENT_NAME" envDefault:"__intent__"`
	KeyStrategy  string `env:"FORMSTATE_KEY_STRATEGY" envDefault:"uuid"`
	MaxListIndex int    `env:"FORMSTATE_MAX_LIST_INDEX" envDefault:"1000"`
}

// ConfigFromEnv reads FORMSTATE_INTENT_NAME, FORMSTATE_KEY_STRATEGY and
// FORMSTATE_MAX_LIST_INDEX.
func ConfigFromEnv() (Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("formstate: parse env: %w", err)
	}
	return Config{
		IntentName:   raw.IntentName,
		KeyStrategy:  KeyStrategy(raw.KeyStrategy),
		MaxListIndex: raw.MaxListIndex,
	}.Resolve()
}
