package schema

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Engine compiles a parsed schema into something that can validate
// parsed documents. Implementations must return a fresh, unshared
// compilation on every call.
type Engine interface {
	Name() string
	Compile(res Resource, schema any) (Compiled, error)
}

// Resource says where a schema came from and what its references may
// load.
type Resource struct {
	// Location is the name the schema is registered under. File schemas
	// use their absolute path.
	Location string
	// Root is the directory that file references may load from. Empty
	// forbids every external reference.
	Root string
}

// Compiled is a loaded root schema.
type Compiled interface {
	// Validate returns a *ConformanceError when doc does not conform.
	Validate(doc any) error
}

const (
	EngineSanthosh     = "santhosh"
	EngineGoJSONSchema = "gojsonschema"

	RegexpGo   = "go"
	RegexpECMA = "ecma"
)

// Config selects and tunes the validation engine.
type Config struct {
	// Engine is EngineSanthosh (default) or EngineGoJSONSchema.
	Engine string
	// Draft is used when a schema has no $schema keyword. One of
	// 4, 6, 7, 2019-09, 2020-12. Empty means the engine's default.
	Draft string
	// AssertFormat makes the format keyword an assertion.
	AssertFormat bool
	// RegexpEngine is RegexpGo (default) or RegexpECMA.
	RegexpEngine string
	// Locale is a BCP 47 tag used to render violation messages.
	Locale string
}

// DefaultConfig returns the configuration used by the package-level
// Validate functions.
func DefaultConfig() Config {
	return Config{
		Engine:       EngineSanthosh,
		RegexpEngine: RegexpGo,
		Locale:       "en",
	}
}

func normalizeDraft(d string) (string, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "draft") {
	case "":
		return "", nil
	case "4", "-04", "04":
		return "4", nil
	case "6", "-06", "06":
		return "6", nil
	case "7", "-07", "07":
		return "7", nil
	case "2019", "2019-09", "-2019-09":
		return "2019-09", nil
	case "2020", "2020-12", "-2020-12":
		return "2020-12", nil
	}
	return "", fmt.Errorf("unknown draft %q", d)
}

func newPrinter(locale string) (*message.Printer, error) {
	if locale == "" {
		return message.NewPrinter(language.English), nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return message.NewPrinter(tag), nil
}

// NewEngine builds the engine described by cfg.
func NewEngine(cfg Config) (Engine, error) {
	draft, err := normalizeDraft(cfg.Draft)
	if err != nil {
		return nil, err
	}
	switch cfg.RegexpEngine {
	case "", RegexpGo, RegexpECMA:
	default:
		return nil, fmt.Errorf("unknown regexp engine %q", cfg.RegexpEngine)
	}

	switch cfg.Engine {
	case "", EngineSanthosh:
		printer, err := newPrinter(cfg.Locale)
		if err != nil {
			return nil, err
		}
		return &santhoshEngine{
			draft:        draft,
			assertFormat: cfg.AssertFormat,
			ecma:         cfg.RegexpEngine == RegexpECMA,
			printer:      printer,
		}, nil
	case EngineGoJSONSchema:
		if cfg.RegexpEngine == RegexpECMA {
			return nil, fmt.Errorf("engine %s does not support %s regexp", EngineGoJSONSchema, RegexpECMA)
		}
		return newGoJSONSchemaEngine(draft)
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}
