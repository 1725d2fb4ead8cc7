// Package schema validates JSON documents against JSON Schemas.
//
// The ValidateBufferBuffer, ValidateFileBuffer and ValidateFileFile
// entry points never fail: every error is logged once and reported as
// false. Validate, ValidateFile and ValidateFiles return the underlying
// error instead, and the Check methods return a Result describing it.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"jsonschema-validation-service/internal/observability/logging"
	"jsonschema-validation-service/internal/observability/metrics"
)

// Source labels which entry point produced a result.
const (
	SourceBufferBuffer = "buffer_buffer"
	SourceFileBuffer   = "file_buffer"
	SourceFileFile     = "file_file"
)

// bufferLocation is the resource name given to in-memory schemas. Such
// schemas get no Root, so their references never reach the filesystem.
const bufferLocation = "schema.json"

// Result is the outcome of a single validation call.
type Result struct {
	Valid      bool        `json:"valid"`
	Kind       Kind        `json:"kind"`
	Violations []Violation `json:"violations,omitempty"`
	Err        error       `json:"-"`
}

// Validator validates documents with a configured Engine. A fresh
// compilation is made for every call, so a Validator is safe for
// concurrent use.
type Validator struct {
	engine  Engine
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

// New creates a Validator for cfg.
func New(cfg Config) (*Validator, error) {
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &Validator{
		engine:  engine,
		metrics: metrics.DefaultMetrics,
	}, nil
}

// WithLogger returns a copy of v that writes diagnostics to l instead
// of the process-wide logger.
func (v *Validator) WithLogger(l zerolog.Logger) *Validator {
	c := *v
	c.logger = &l
	return &c
}

// EngineName reports the engine backing v.
func (v *Validator) EngineName() string {
	return v.engine.Name()
}

// Validate checks document against schema, both given as JSON text.
func (v *Validator) Validate(schema, document []byte) error {
	return v.validate(Resource{Location: bufferLocation}, schema, document)
}

// ValidateFile checks document against the schema stored at schemaPath.
func (v *Validator) ValidateFile(schemaPath string, document []byte) error {
	schema, err := readFile(schemaPath)
	if err != nil {
		return err
	}
	return v.validate(fileResource(schemaPath), schema, document)
}

// ValidateFiles checks the document stored at documentPath against the
// schema stored at schemaPath.
func (v *Validator) ValidateFiles(schemaPath, documentPath string) error {
	schema, err := readFile(schemaPath)
	if err != nil {
		return err
	}
	document, err := readFile(documentPath)
	if err != nil {
		return err
	}
	return v.validate(fileResource(schemaPath), schema, document)
}

func (v *Validator) validate(res Resource, schema, document []byte) error {
	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return fmt.Errorf("%w: schema: %w", ErrParse, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(document))
	if err != nil {
		return fmt.Errorf("%w: document: %w", ErrParse, err)
	}
	v.metrics.RecordDocumentSize(len(document))

	compiled, err := v.engine.Compile(res, schemaDoc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaLoad, err)
	}
	return compiled.Validate(doc)
}

// fileResource registers a file schema under its absolute path so that
// relative $ref values resolve against sibling files, and confines those
// references to the schema's directory.
func fileResource(path string) Resource {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Resource{Location: abs, Root: filepath.Dir(abs)}
}

// CheckBuffer is Validate reported as a Result.
func (v *Validator) CheckBuffer(schema, document []byte) Result {
	return v.check(SourceBufferBuffer, func() error { return v.Validate(schema, document) })
}

// CheckFile is ValidateFile reported as a Result.
func (v *Validator) CheckFile(schemaPath string, document []byte) Result {
	return v.check(SourceFileBuffer, func() error { return v.ValidateFile(schemaPath, document) })
}

// CheckFiles is ValidateFiles reported as a Result.
func (v *Validator) CheckFiles(schemaPath, documentPath string) Result {
	return v.check(SourceFileFile, func() error { return v.ValidateFiles(schemaPath, documentPath) })
}

// ValidateBufferBuffer reports whether document conforms to schema.
func (v *Validator) ValidateBufferBuffer(schema, document []byte) bool {
	return v.CheckBuffer(schema, document).Valid
}

// ValidateFileBuffer reports whether document conforms to the schema
// stored at schemaPath.
func (v *Validator) ValidateFileBuffer(schemaPath string, document []byte) bool {
	return v.CheckFile(schemaPath, document).Valid
}

// ValidateFileFile reports whether the document stored at documentPath
// conforms to the schema stored at schemaPath.
func (v *Validator) ValidateFileFile(schemaPath, documentPath string) bool {
	return v.CheckFiles(schemaPath, documentPath).Valid
}

// check is the only place errors are turned into results.
func (v *Validator) check(source string, run func() error) Result {
	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("validation engine panic: %v", r)
			}
		}()
		return run()
	}()

	kind := KindOf(err)
	if err == nil {
		v.metrics.RecordValidation(source, true, "", time.Since(start).Seconds())
		return Result{Valid: true, Kind: kind}
	}
	v.metrics.RecordValidation(source, false, string(kind), time.Since(start).Seconds())

	l := v.log()
	l.Error().
		Err(err).
		Str("source", source).
		Str("kind", string(kind)).
		Msg("JSON schema validation failed")

	res := Result{Kind: kind, Err: err}
	var ce *ConformanceError
	if errors.As(err, &ce) {
		res.Violations = ce.Violations
	}
	return res
}

func (v *Validator) log() *zerolog.Logger {
	if v.logger != nil {
		return v.logger
	}
	l := logging.WithComponent("schema")
	return &l
}

var std = func() *Validator {
	v, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return v
}()

// Default returns the Validator used by the package-level functions.
func Default() *Validator {
	return std
}

// ValidateBufferBuffer reports whether document conforms to schema using
// the default Validator.
func ValidateBufferBuffer(schema, document []byte) bool {
	return std.ValidateBufferBuffer(schema, document)
}

// ValidateFileBuffer reports whether document conforms to the schema
// stored at schemaPath using the default Validator.
func ValidateFileBuffer(schemaPath string, document []byte) bool {
	return std.ValidateFileBuffer(schemaPath, document)
}

// ValidateFileFile reports whether the document at documentPath conforms
// to the schema at schemaPath using the default Validator.
func ValidateFileFile(schemaPath, documentPath string) bool {
	return std.ValidateFileFile(schemaPath, documentPath)
}
