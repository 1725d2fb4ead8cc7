package schema

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonreference"
	"github.com/xeipuuv/gojsonschema"
)

// goJSONSchemaEngine is backed by github.com/xeipuuv/gojsonschema. It
// only understands drafts 4, 6 and 7 and always asserts formats.
type goJSONSchemaEngine struct {
	draft gojsonschema.Draft
}

func newGoJSONSchemaEngine(draft string) (*goJSONSchemaEngine, error) {
	e := &goJSONSchemaEngine{draft: gojsonschema.Hybrid}
	switch draft {
	case "":
	case "4":
		e.draft = gojsonschema.Draft4
	case "6":
		e.draft = gojsonschema.Draft6
	case "7":
		e.draft = gojsonschema.Draft7
	default:
		return nil, fmt.Errorf("engine %s does not support draft %s", EngineGoJSONSchema, draft)
	}
	return e, nil
}

func (e *goJSONSchemaEngine) Name() string { return EngineGoJSONSchema }

func (e *goJSONSchemaEngine) Compile(res Resource, doc any) (Compiled, error) {
	sl := gojsonschema.NewSchemaLoader()
	sl.Draft = e.draft
	sl.AutoDetect = true
	sch, err := sl.Compile(newRootLoader(res, doc))
	if err != nil {
		return nil, err
	}
	return &goJSONSchema{sch: sch}, nil
}

// rootLoader hands an already parsed schema to gojsonschema under its
// real reference, so relative $ref values resolve against the file. Its
// factory sends every reference through confine instead of the default
// loaders, which read any file and fetch http URLs.
type rootLoader struct {
	doc any
	ref string
	fac refLoaderFactory
}

func newRootLoader(res Resource, doc any) *rootLoader {
	ref := "#"
	if res.Root != "" {
		ref = (&url.URL{Scheme: "file", Path: filepath.ToSlash(res.Location)}).String()
	}
	return &rootLoader{doc: doc, ref: ref, fac: refLoaderFactory{root: res.Root, self: ref, doc: doc}}
}

func (l *rootLoader) JsonSource() interface{} { return l.doc }

func (l *rootLoader) LoadJSON() (interface{}, error) { return l.doc, nil }

func (l *rootLoader) JsonReference() (gojsonreference.JsonReference, error) {
	return gojsonreference.NewJsonReference(l.ref)
}

func (l *rootLoader) LoaderFactory() gojsonschema.JSONLoaderFactory { return l.fac }

// refLoaderFactory serves the root document from memory when
// gojsonschema asks for it by reference.
type refLoaderFactory struct {
	root string
	self string
	doc  any
}

func (f refLoaderFactory) New(source string) gojsonschema.JSONLoader {
	return &refLoader{source: source, fac: f}
}

type refLoader struct {
	source string
	fac    refLoaderFactory
}

func (l *refLoader) JsonSource() interface{} { return l.source }

func (l *refLoader) LoadJSON() (interface{}, error) {
	if l.source == l.fac.self {
		return l.fac.doc, nil
	}
	return loadRef(l.fac.root, l.source)
}

func (l *refLoader) JsonReference() (gojsonreference.JsonReference, error) {
	return gojsonreference.NewJsonReference(l.source)
}

func (l *refLoader) LoaderFactory() gojsonschema.JSONLoaderFactory { return l.fac }

type goJSONSchema struct {
	sch *gojsonschema.Schema
}

func (s *goJSONSchema) Validate(doc any) error {
	res, err := s.sch.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if res.Valid() {
		return nil
	}
	violations := make([]Violation, 0, len(res.Errors()))
	for _, re := range res.Errors() {
		violations = append(violations, Violation{
			Location: strings.TrimPrefix(re.Context().String("/"), "(root)"),
			Message:  re.Description(),
		})
	}
	return &ConformanceError{Violations: violations}
}
