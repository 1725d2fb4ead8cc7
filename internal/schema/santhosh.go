package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/message"
)

// santhoshEngine is backed by github.com/santhosh-tekuri/jsonschema/v6.
type santhoshEngine struct {
	draft        string
	assertFormat bool
	ecma         bool
	printer      *message.Printer
}

func (e *santhoshEngine) Name() string { return EngineSanthosh }

func (e *santhoshEngine) Compile(res Resource, doc any) (Compiled, error) {
	c := jsonschema.NewCompiler()
	c.UseLoader(confinedLoader{root: res.Root})
	if d := santhoshDraft(e.draft); d != nil {
		c.DefaultDraft(d)
	}
	if e.assertFormat {
		c.AssertFormat()
	}
	if e.ecma {
		c.UseRegexpEngine(ecmaCompile)
	}
	if err := c.AddResource(res.Location, doc); err != nil {
		return nil, err
	}
	sch, err := c.Compile(res.Location)
	if err != nil {
		return nil, err
	}
	return &santhoshSchema{sch: sch, printer: e.printer}, nil
}

// confinedLoader replaces the compiler's default loader, which would
// follow any file URL. Draft meta-schemas are built into the compiler and
// never reach it.
type confinedLoader struct {
	root string
}

func (l confinedLoader) Load(url string) (any, error) {
	return loadRef(l.root, url)
}

func santhoshDraft(d string) *jsonschema.Draft {
	switch d {
	case "4":
		return jsonschema.Draft4
	case "6":
		return jsonschema.Draft6
	case "7":
		return jsonschema.Draft7
	case "2019-09":
		return jsonschema.Draft2019
	case "2020-12":
		return jsonschema.Draft2020
	}
	return nil
}

type santhoshSchema struct {
	sch     *jsonschema.Schema
	printer *message.Printer
}

func (s *santhoshSchema) Validate(doc any) error {
	err := s.sch.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return &ConformanceError{Violations: s.leaves(ve, nil)}
}

// leaves collects the innermost causes, which name the failing keywords.
func (s *santhoshSchema) leaves(ve *jsonschema.ValidationError, out []Violation) []Violation {
	if len(ve.Causes) == 0 {
		return append(out, Violation{
			Location: pointer(ve.InstanceLocation),
			Message:  ve.ErrorKind.LocalizedString(s.printer),
		})
	}
	for _, c := range ve.Causes {
		out = s.leaves(c, out)
	}
	return out
}

func pointer(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteByte('/')
		tok = strings.ReplaceAll(tok, "~", "~0")
		sb.WriteString(strings.ReplaceAll(tok, "/", "~1"))
	}
	return sb.String()
}

// ecmaRegexp adapts regexp2 to the jsonschema.Regexp interface so that
// patterns using ECMA 262 syntax unsupported by RE2 still compile.
type ecmaRegexp regexp2.Regexp

func (re *ecmaRegexp) MatchString(s string) bool {
	matched, err := (*regexp2.Regexp)(re).MatchString(s)
	return err == nil && matched
}

func (re *ecmaRegexp) String() string {
	return (*regexp2.Regexp)(re).String()
}

func ecmaCompile(s string) (jsonschema.Regexp, error) {
	re, err := regexp2.Compile(s, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	return (*ecmaRegexp)(re), nil
}
