package screen

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/CreativeUnicorns/sharedprefs"
)

// Screen is a Resource bound read/write to its preference namespace.
// It keeps no state of its own; every Render reads through the Manager.
type Screen struct {
	instanceID uuid.UUID
	resource   *Resource
	prefs      *sharedprefs.Preferences
}

func newScreen(resource *Resource, prefs *sharedprefs.Preferences) *Screen {
	return &Screen{
		instanceID: uuid.New(),
		resource:   resource,
		prefs:      prefs,
	}
}

// InstanceID distinguishes this attachment from earlier ones of the same resource.
func (s *Screen) InstanceID() uuid.UUID { return s.instanceID }

// Resource returns the definition the screen was built from.
func (s *Screen) Resource() *Resource { return s.resource }

// FieldView is the rendered state of one field.
type FieldView struct {
	Key           string    `json:"key"`
	Type          FieldType `json:"type"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary,omitempty"`
	Value         any       `json:"value"`
	Default       any       `json:"default"`
	AllowedValues []any     `json:"allowed_values,omitempty"`
}

// View is a rendered screen.
type View struct {
	InstanceID string      `json:"instance_id"`
	ResourceID ResourceID  `json:"resource_id"`
	Name       string      `json:"name"`
	Title      string      `json:"title"`
	Namespace  string      `json:"namespace"`
	Fields     []FieldView `json:"fields"`
}

// Render reads every field, falling back to the field default for unset keys.
func (s *Screen) Render(ctx context.Context) (View, error) {
	view := View{
		InstanceID: s.instanceID.String(),
		ResourceID: s.resource.ID,
		Name:       s.resource.Name,
		Title:      s.resource.Title,
		Namespace:  s.prefs.Name(),
		Fields:     make([]FieldView, 0, len(s.resource.Fields)),
	}

	for i := range s.resource.Fields {
		f := &s.resource.Fields[i]
		value, err := f.codec.read(ctx, s.prefs, f.Key, f.Default)
		if err != nil {
			return View{}, fmt.Errorf("rendering field %q: %w", f.Key, err)
		}
		view.Fields = append(view.Fields, FieldView{
			Key:           f.Key,
			Type:          f.Type,
			Title:         f.Title,
			Summary:       f.Summary,
			Value:         value,
			Default:       f.Default,
			AllowedValues: f.AllowedValues,
		})
	}
	return view, nil
}

// Set validates raw against the field bound to key and writes it. A nil raw
// value leaves the stored preference untouched.
func (s *Screen) Set(ctx context.Context, key string, raw any) error {
	f, err := s.resource.Field(key)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	v, err := f.codec.normalize(raw)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	if err := f.checkAllowed(v); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return f.codec.write(ctx, s.prefs, key, v)
}

// Reset removes the stored value so the field shows its default again.
func (s *Screen) Reset(ctx context.Context, key string) error {
	if _, err := s.resource.Field(key); err != nil {
		return err
	}
	return s.prefs.Remove(ctx, key)
}
