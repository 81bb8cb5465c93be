package screen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/CreativeUnicorns/sharedprefs"
)

// ResourceID identifies a Resource in a Table.
type ResourceID int

// Field is one preference shown on a settings screen.
type Field struct {
	Key     string    `yaml:"key" json:"key"`
	Type    FieldType `yaml:"type" json:"type"`
	Title   string    `yaml:"title" json:"title"`
	Summary string    `yaml:"summary,omitempty" json:"summary,omitempty"`
	// Default is shown while the key is unset. Sets take a list.
	Default any `yaml:"default,omitempty" json:"default,omitempty"`
	// AllowedValues restricts a scalar, or every element of a set, when non-empty.
	AllowedValues []any `yaml:"allowed_values,omitempty" json:"allowed_values,omitempty"`

	codec fieldCodec
}

// Resource is a declarative settings screen: a titled list of fields read
// from and written to one preference namespace.
type Resource struct {
	ID        ResourceID `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	Title     string     `yaml:"title" json:"title"`
	Namespace string     `yaml:"namespace" json:"namespace"`
	Fields    []Field    `yaml:"fields" json:"fields"`
}

// Field returns the field bound to key.
func (r *Resource) Field(key string) (*Field, error) {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			return &r.Fields[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q in resource %d", ErrFieldNotFound, key, r.ID)
}

// prepare checks the resource and replaces field defaults and allowed values
// with their canonical native forms.
func (r *Resource) prepare() error {
	if r.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidResource, r.ID)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: resource %d has no name", ErrInvalidResource, r.ID)
	}

	seen := make(map[string]bool, len(r.Fields))
	for i := range r.Fields {
		f := &r.Fields[i]
		if f.Key == "" {
			return fmt.Errorf("%w: resource %d field %d has no key", ErrInvalidResource, r.ID, i)
		}
		if seen[f.Key] {
			return fmt.Errorf("%w: resource %d repeats field %q", ErrInvalidResource, r.ID, f.Key)
		}
		seen[f.Key] = true

		if err := f.prepare(); err != nil {
			return fmt.Errorf("%w: resource %d field %q: %w", ErrInvalidResource, r.ID, f.Key, err)
		}
	}
	return nil
}

func (f *Field) prepare() error {
	codec, err := codecFor(f.Type)
	if err != nil {
		return err
	}
	f.codec = codec

	allowed := make([]any, 0, len(f.AllowedValues))
	for _, raw := range f.AllowedValues {
		v, err := normalizeElem(codec.elem, raw)
		if err != nil {
			return fmt.Errorf("allowed value: %w", err)
		}
		allowed = append(allowed, v)
	}
	f.AllowedValues = allowed

	def, err := codec.normalize(f.Default)
	if err != nil {
		return fmt.Errorf("default: %w", err)
	}
	if err := f.checkAllowed(def); err != nil {
		return fmt.Errorf("default: %w", err)
	}
	f.Default = def
	return nil
}

// checkAllowed verifies a canonical value against AllowedValues.
func (f *Field) checkAllowed(v any) error {
	if len(f.AllowedValues) == 0 {
		return nil
	}
	for _, m := range f.codec.members(v) {
		if !slices.Contains(f.AllowedValues, m) {
			return fmt.Errorf("%w: %v is not one of %v", sharedprefs.ErrInvalidValue, m, f.AllowedValues)
		}
	}
	return nil
}

// Table is the set of resources a Host can show, keyed by ResourceID.
type Table struct {
	resources map[ResourceID]*Resource
}

type resourceFile struct {
	Resources []Resource `yaml:"resources"`
}

// NewTable validates resources and indexes them by ID.
func NewTable(resources ...Resource) (*Table, error) {
	t := &Table{resources: make(map[ResourceID]*Resource, len(resources))}
	for i := range resources {
		r := resources[i]
		r.Fields = slices.Clone(r.Fields)
		if err := r.prepare(); err != nil {
			return nil, err
		}
		if _, dup := t.resources[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate resource id %d", ErrInvalidResource, r.ID)
		}
		t.resources[r.ID] = &r
	}
	return t, nil
}

// ParseResources reads a YAML document with a top-level "resources" list.
func ParseResources(data []byte) (*Table, error) {
	var doc resourceFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResource, err)
	}
	return NewTable(doc.Resources...)
}

// LoadResources reads and parses the YAML resource file at path.
func LoadResources(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resources: %w", err)
	}
	return ParseResources(data)
}

// Lookup returns the resource with id.
func (t *Table) Lookup(id ResourceID) (*Resource, error) {
	r, ok := t.resources[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrResourceNotFound, id)
	}
	return r, nil
}

// Resources lists every resource ordered by ID.
func (t *Table) Resources() []*Resource {
	out := make([]*Resource, 0, len(t.resources))
	for _, r := range t.resources {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b *Resource) int { return int(a.ID) - int(b.ID) })
	return out
}
