package schema

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

const personSchema = `{"type":"object","required":["name"],"properties":{"name":{"type":"string"}}}`

// quietValidator returns a validator whose diagnostics go to buf.
func quietValidator(t *testing.T, cfg Config, buf *bytes.Buffer) *Validator {
	t.Helper()
	v, err := New(cfg)
	if err != nil {
		t.Fatalf("New(%+v) failed: %v", cfg, err)
	}
	if buf == nil {
		buf = &bytes.Buffer{}
	}
	return v.WithLogger(zerolog.New(buf))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", p, err)
	}
	return p
}

func TestValidateBufferBuffer(t *testing.T) {
	v := quietValidator(t, DefaultConfig(), nil)

	tests := []struct {
		name     string
		schema   string
		document string
		want     bool
		kind     Kind
	}{
		{"conforming document", personSchema, `{"name":"widget"}`, true, KindOK},
		{"missing required property", personSchema, `{"age":5}`, false, KindValidation},
		{"wrong property type", personSchema, `{"name":42}`, false, KindValidation},
		{"schema not json", `not json`, `{"name":"widget"}`, false, KindParse},
		{"document not json", personSchema, `not json`, false, KindParse},
		{"empty schema", ``, `{}`, false, KindParse},
		{"empty document", personSchema, ``, false, KindParse},
		{"trailing data", personSchema, `{"name":"a"} {}`, false, KindParse},
		{"invalid schema keyword value", `{"type":5}`, `{}`, false, KindSchemaLoad},
		{"schema is not an object", `42`, `{}`, false, KindSchemaLoad},
		{"true schema", `true`, `[1,2,3]`, true, KindOK},
		{"false schema", `false`, `{}`, false, KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.ValidateBufferBuffer([]byte(tt.schema), []byte(tt.document)); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			res := v.CheckBuffer([]byte(tt.schema), []byte(tt.document))
			if res.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s (err: %v)", tt.kind, res.Kind, res.Err)
			}
		})
	}
}

func TestValidate_ErrorKinds(t *testing.T) {
	v := quietValidator(t, DefaultConfig(), nil)

	err := v.Validate([]byte(personSchema), []byte(`{"age":5}`))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var ce *ConformanceError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConformanceError, got %T", err)
	}
	if len(ce.Violations) == 0 {
		t.Fatal("expected at least one violation")
	}
	if ce.Violations[0].Message == "" {
		t.Error("expected violation message")
	}

	if err := v.Validate([]byte(`{`), []byte(`{}`)); !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
	if err := v.Validate([]byte(`{"minLength":-1}`), []byte(`""`)); !errors.Is(err, ErrSchemaLoad) {
		t.Errorf("expected ErrSchemaLoad, got %v", err)
	}
}

func TestCheck_ViolationLocation(t *testing.T) {
	v := quietValidator(t, DefaultConfig(), nil)

	res := v.CheckBuffer([]byte(personSchema), []byte(`{"name":42}`))
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	found := false
	for _, vi := range res.Violations {
		if vi.Location == "/name" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a violation at /name, got %+v", res.Violations)
	}
}

func TestValidateFileBuffer(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "person.schema.json", personSchema)
	v := quietValidator(t, DefaultConfig(), nil)

	if !v.ValidateFileBuffer(schemaPath, []byte(`{"name":"widget"}`)) {
		t.Error("expected conforming document to be valid")
	}
	if v.ValidateFileBuffer(schemaPath, []byte(`{"age":5}`)) {
		t.Error("expected non-conforming document to be invalid")
	}
	if v.ValidateFileBuffer("/nonexistent/schema.json", []byte(`{"name":"widget"}`)) {
		t.Error("expected missing schema file to be invalid")
	}

	res := v.CheckFile("/nonexistent/schema.json", []byte(`{}`))
	if res.Kind != KindFileOpen {
		t.Errorf("expected kind %s, got %s", KindFileOpen, res.Kind)
	}
	if !errors.Is(res.Err, ErrFileOpen) {
		t.Errorf("expected ErrFileOpen, got %v", res.Err)
	}
}

func TestValidateFileBuffer_Directory(t *testing.T) {
	v := quietValidator(t, DefaultConfig(), nil)

	res := v.CheckFile(t.TempDir(), []byte(`{}`))
	if res.Valid {
		t.Fatal("expected directory schema path to be invalid")
	}
	if res.Kind != KindFileRead {
		t.Errorf("expected kind %s, got %s (err: %v)", KindFileRead, res.Kind, res.Err)
	}
}

func TestValidateFileFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "person.schema.json", personSchema)
	goodPath := writeFile(t, dir, "good.json", `{"name":"widget"}`)
	badPath := writeFile(t, dir, "bad.json", `{"age":5}`)
	brokenPath := writeFile(t, dir, "broken.json", `{"name":`)
	missing := filepath.Join(dir, "missing.json")

	v := quietValidator(t, DefaultConfig(), nil)

	tests := []struct {
		name   string
		schema string
		doc    string
		want   bool
		kind   Kind
	}{
		{"valid", schemaPath, goodPath, true, KindOK},
		{"invalid", schemaPath, badPath, false, KindValidation},
		{"malformed document", schemaPath, brokenPath, false, KindParse},
		{"missing schema", missing, goodPath, false, KindFileOpen},
		{"missing document", schemaPath, missing, false, KindFileOpen},
		{"both missing", missing, missing, false, KindFileOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.ValidateFileFile(tt.schema, tt.doc); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if res := v.CheckFiles(tt.schema, tt.doc); res.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, res.Kind)
			}
		})
	}
}

func TestValidateFileFile_RelativeRef(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "defs.json", `{"$defs":{"name":{"type":"string","minLength":1}}}`)
	schemaPath := writeFile(t, dir, "main.json",
		`{"type":"object","properties":{"name":{"$ref":"defs.json#/$defs/name"}}}`)
	good := writeFile(t, dir, "good.json", `{"name":"widget"}`)
	bad := writeFile(t, dir, "bad.json", `{"name":""}`)

	for _, cfg := range []Config{
		DefaultConfig(),
		{Engine: EngineGoJSONSchema, Draft: "7"},
	} {
		t.Run(cfg.Engine, func(t *testing.T) {
			var buf bytes.Buffer
			v := quietValidator(t, cfg, &buf)
			if !v.ValidateFileFile(schemaPath, good) {
				t.Errorf("expected document to be valid against referenced definition: %s", buf.String())
			}
			if v.ValidateFileFile(schemaPath, bad) {
				t.Error("expected empty name to violate referenced definition")
			}
		})
	}
}

func TestFailure_LogsSingleLine(t *testing.T) {
	var buf bytes.Buffer
	v := quietValidator(t, DefaultConfig(), &buf)

	if v.ValidateFileBuffer("/nonexistent/schema.json", []byte(`{}`)) {
		t.Fatal("expected false")
	}
	out := strings.TrimSpace(buf.String())
	if n := strings.Count(out, "\n") + 1; n != 1 {
		t.Errorf("expected exactly one log line, got %d: %s", n, out)
	}
	if !strings.Contains(out, "failed to open file") {
		t.Errorf("expected log line to carry the underlying error, got %s", out)
	}
	if !strings.Contains(out, `"kind":"file_open"`) {
		t.Errorf("expected kind field in log line, got %s", out)
	}
}

func TestSuccess_LogsNothing(t *testing.T) {
	var buf bytes.Buffer
	v := quietValidator(t, DefaultConfig(), &buf)

	if !v.ValidateBufferBuffer([]byte(personSchema), []byte(`{"name":"widget"}`)) {
		t.Fatal("expected true")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no log output, got %s", buf.String())
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := quietValidator(t, DefaultConfig(), nil)
	for i := 0; i < 5; i++ {
		if !v.ValidateBufferBuffer([]byte(personSchema), []byte(`{"name":"widget"}`)) {
			t.Fatalf("call %d: expected true", i)
		}
		if v.ValidateBufferBuffer([]byte(personSchema), []byte(`{"age":5}`)) {
			t.Fatalf("call %d: expected false", i)
		}
	}
}

func TestValidate_Concurrent(t *testing.T) {
	v := quietValidator(t, DefaultConfig(), nil)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, want := `{"name":"widget"}`, true
			if i%2 == 1 {
				doc, want = `{"age":5}`, false
			}
			if got := v.ValidateBufferBuffer([]byte(personSchema), []byte(doc)); got != want {
				errs <- doc
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for doc := range errs {
		t.Errorf("unexpected result for %s", doc)
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "person.schema.json", personSchema)
	docPath := writeFile(t, dir, "doc.json", `{"name":"widget"}`)

	if !ValidateBufferBuffer([]byte(personSchema), []byte(`{"name":"widget"}`)) {
		t.Error("expected scenario A to be valid")
	}
	if ValidateBufferBuffer([]byte(personSchema), []byte(`{"age":5}`)) {
		t.Error("expected scenario B to be invalid")
	}
	if ValidateBufferBuffer([]byte(`not json`), []byte(`{"name":"widget"}`)) {
		t.Error("expected scenario C to be invalid")
	}
	if ValidateFileBuffer("/nonexistent/schema.json", []byte(`{"name":"widget"}`)) {
		t.Error("expected scenario D to be invalid")
	}
	if !ValidateFileBuffer(schemaPath, []byte(`{"name":"widget"}`)) {
		t.Error("expected file/buffer to be valid")
	}
	if !ValidateFileFile(schemaPath, docPath) {
		t.Error("expected file/file to be valid")
	}
	if Default().EngineName() != EngineSanthosh {
		t.Errorf("expected default engine %s, got %s", EngineSanthosh, Default().EngineName())
	}
}
