package schema

import (
	"testing"
)

func TestNewEngine_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown engine", Config{Engine: "nlohmann"}},
		{"unknown draft", Config{Draft: "3"}},
		{"unknown regexp engine", Config{RegexpEngine: "pcre"}},
		{"invalid locale", Config{Locale: "not a locale!"}},
		{"gojsonschema with 2020-12", Config{Engine: EngineGoJSONSchema, Draft: "2020-12"}},
		{"gojsonschema with ecma regexp", Config{Engine: EngineGoJSONSchema, RegexpEngine: RegexpECMA}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNormalizeDraft(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"4", "4"},
		{"draft-04", "4"},
		{"draft7", "7"},
		{"2019-09", "2019-09"},
		{"Draft2020", "2020-12"},
		{" 2020-12 ", "2020-12"},
	}
	for _, tt := range tests {
		got, err := normalizeDraft(tt.in)
		if err != nil {
			t.Errorf("normalizeDraft(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeDraft(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestDraft4_ExclusiveMinimum(t *testing.T) {
	schema := []byte(`{"type":"integer","minimum":5,"exclusiveMinimum":true}`)

	v := quietValidator(t, Config{Draft: "4"}, nil)
	if v.ValidateBufferBuffer(schema, []byte(`5`)) {
		t.Error("expected 5 to violate exclusive minimum under draft 4")
	}
	if !v.ValidateBufferBuffer(schema, []byte(`6`)) {
		t.Error("expected 6 to satisfy exclusive minimum under draft 4")
	}

	// Under 2020-12 exclusiveMinimum must be a number.
	v = quietValidator(t, DefaultConfig(), nil)
	if res := v.CheckBuffer(schema, []byte(`6`)); res.Kind != KindSchemaLoad {
		t.Errorf("expected kind %s, got %s", KindSchemaLoad, res.Kind)
	}
}

func TestAssertFormat(t *testing.T) {
	schema := []byte(`{"type":"string","format":"email"}`)
	doc := []byte(`"not-an-email"`)

	if !quietValidator(t, DefaultConfig(), nil).ValidateBufferBuffer(schema, doc) {
		t.Error("expected format to be an annotation by default")
	}
	cfg := DefaultConfig()
	cfg.AssertFormat = true
	if quietValidator(t, cfg, nil).ValidateBufferBuffer(schema, doc) {
		t.Error("expected format assertion to reject document")
	}
}

func TestECMARegexp(t *testing.T) {
	// RE2 has no \c escape.
	schema := []byte(`{"type":"string","pattern":"^\\cc$"}`)
	doc := []byte(`"\u0003"`)

	if res := quietValidator(t, DefaultConfig(), nil).CheckBuffer(schema, doc); res.Kind != KindSchemaLoad {
		t.Errorf("expected kind %s with go regexp, got %s", KindSchemaLoad, res.Kind)
	}

	cfg := DefaultConfig()
	cfg.RegexpEngine = RegexpECMA
	if !quietValidator(t, cfg, nil).ValidateBufferBuffer(schema, doc) {
		t.Error("expected ecma regexp engine to accept pattern")
	}
}

func TestGoJSONSchemaEngine(t *testing.T) {
	v := quietValidator(t, Config{Engine: EngineGoJSONSchema, Draft: "7"}, nil)
	if v.EngineName() != EngineGoJSONSchema {
		t.Fatalf("expected engine %s, got %s", EngineGoJSONSchema, v.EngineName())
	}

	if !v.ValidateBufferBuffer([]byte(personSchema), []byte(`{"name":"widget"}`)) {
		t.Error("expected scenario A to be valid")
	}
	res := v.CheckBuffer([]byte(personSchema), []byte(`{"age":5}`))
	if res.Valid {
		t.Fatal("expected scenario B to be invalid")
	}
	if res.Kind != KindValidation {
		t.Errorf("expected kind %s, got %s", KindValidation, res.Kind)
	}
	if len(res.Violations) == 0 {
		t.Error("expected violations")
	}
	if v.ValidateBufferBuffer([]byte(`not json`), []byte(`{}`)) {
		t.Error("expected scenario C to be invalid")
	}

	res = v.CheckBuffer([]byte(personSchema), []byte(`{"name":42}`))
	if len(res.Violations) != 1 || res.Violations[0].Location != "/name" {
		t.Errorf("expected one violation at /name, got %+v", res.Violations)
	}
}

func TestLocale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Locale = "en-GB"
	v := quietValidator(t, cfg, nil)
	res := v.CheckBuffer([]byte(personSchema), []byte(`{"age":5}`))
	if len(res.Violations) == 0 || res.Violations[0].Message == "" {
		t.Errorf("expected localized violation message, got %+v", res.Violations)
	}
}
