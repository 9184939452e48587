package catalog

import (
	"bytes"
	"encoding/json"
	"iter"
)

const (
	// UnknownGroup is the playlist group used when a category has no name.
	UnknownGroup = "Unknown Category"
	// UnknownCategory is the guide category used when neither the stream nor
	// its parent category carries a name.
	UnknownCategory = "Unknown"
)

// Catalog is the full listing returned by the upstream catalog endpoint.
// It is produced wholesale by one fetch and never mutated afterwards.
type Catalog struct {
	Success    bool       `json:"success"`
	Categories []Category `json:"streams"`

	// Raw is the upstream document the catalog was decoded from. It is
	// persisted verbatim so fields the catalog does not model survive.
	Raw json.RawMessage `json:"-"`
}

// Decode parses an upstream catalog document, keeping a copy as Raw.
func Decode(data []byte) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return Catalog{}, err
	}
	c.Raw = bytes.Clone(data)
	return c, nil
}

// Document returns the document to persist: Raw when the catalog came from
// upstream, otherwise the catalog encoded as JSON.
func (c Catalog) Document() ([]byte, error) {
	if len(c.Raw) > 0 {
		return c.Raw, nil
	}
	return json.Marshal(c)
}

// Category groups the streams of one sport or league.
type Category struct {
	Name    string   `json:"category"`
	Streams []Stream `json:"streams"`

	// nameSet records a "category" key that was present, even if empty.
	nameSet bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	var aux struct {
		plain
		Name *string `json:"category"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*c = Category(aux.plain)
	if aux.Name != nil {
		c.Name, c.nameSet = *aux.Name, true
	}
	return nil
}

// Stream is a single scheduled event as described by the catalog.
type Stream struct {
	ID           StreamID `json:"id,omitempty"`
	Name         string   `json:"name,omitempty"`
	Poster       string   `json:"poster,omitempty"`
	CategoryName string   `json:"category_name,omitempty"`
	Tag          string   `json:"tag,omitempty"`
	StartsAt     Epoch    `json:"starts_at,omitempty"`
	EndsAt       Epoch    `json:"ends_at,omitempty"`

	// categoryNameSet records a "category_name" key that was present, even if empty.
	categoryNameSet bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Stream) UnmarshalJSON(data []byte) error {
	type plain Stream
	var aux struct {
		plain
		CategoryName *string `json:"category_name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*s = Stream(aux.plain)
	if aux.CategoryName != nil {
		s.CategoryName, s.categoryNameSet = *aux.CategoryName, true
	}
	return nil
}

// All yields every stream together with its parent category, in the order
// they appeared in the upstream document.
func (c Catalog) All() iter.Seq2[Category, Stream] {
	return func(yield func(Category, Stream) bool) {
		for _, cat := range c.Categories {
			for _, s := range cat.Streams {
				if !yield(cat, s) {
					return
				}
			}
		}
	}
}

// StreamCount returns the number of streams across all categories.
func (c Catalog) StreamCount() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Streams)
	}
	return n
}

// GroupTitle returns the category name used as the playlist group. A
// category without a "category" key falls back to UnknownGroup; an empty
// name sent by upstream is kept.
func (c Category) GroupTitle() string {
	if c.Name == "" && !c.nameSet {
		return UnknownGroup
	}
	return c.Name
}

// Usable reports whether the stream can appear in generated output.
// Streams without a name stay in the catalog but are never rendered.
func (s Stream) Usable() bool {
	return s.Name != ""
}

// Category returns the stream's own category name, falling back to the
// parent category and finally to UnknownCategory. Only absent keys fall
// back; names sent empty by upstream are kept.
func (s Stream) Category(parent Category) string {
	if s.CategoryName != "" || s.categoryNameSet {
		return s.CategoryName
	}
	if parent.Name != "" || parent.nameSet {
		return parent.Name
	}
	return UnknownCategory
}

// Description returns the guide description: the category, suffixed with
// the tag when one is present. The tag is used as sent.
func (s Stream) Description(parent Category) string {
	desc := s.Category(parent)
	if s.Tag != "" {
		desc += " - " + s.Tag
	}
	return desc
}
