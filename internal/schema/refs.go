package schema

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrExternalRef is returned when a schema references a document it is
// not allowed to load.
var ErrExternalRef = errors.New("external reference not allowed")

// confine maps a file URL reference to a path inside root. Only file
// URLs are accepted, and symlinks are resolved before the check.
func confine(root, ref string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: %s: in-memory schemas cannot load references", ErrExternalRef, ref)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExternalRef, ref, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: %s: only file references are allowed", ErrExternalRef, ref)
	}

	base, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolve schema directory %q: %w", root, err)
	}
	path, err := filepath.EvalSymlinks(filepath.FromSlash(u.Path))
	if err != nil {
		return "", fmt.Errorf("resolve reference %s: %w", ref, err)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s: outside schema directory %s", ErrExternalRef, ref, root)
	}
	return path, nil
}

// loadRef reads and parses a referenced document confined to root.
func loadRef(root, ref string) (any, error) {
	path, err := confine(root, ref)
	if err != nil {
		return nil, err
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, ref, err)
	}
	return doc, nil
}
