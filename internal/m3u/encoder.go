package m3u

import (
	"fmt"
	"io"
	"strings"
)

// Encoder accumulates playlist entries and writes them as an extended M3U file.
type Encoder struct {
	epgUrls []string
	items   []*Channel
}

// NewEncoder returns an encoder whose header advertises the given guide URLs.
func NewEncoder(guideUrls []string) *Encoder {
	return &Encoder{epgUrls: guideUrls, items: []*Channel{}}
}

// AddChannel appends an entry.
func (p *Encoder) AddChannel(item *Channel) {
	p.items = append(p.items, item)
}

// Len returns the number of entries added so far.
func (p *Encoder) Len() int {
	return len(p.items)
}

// Encode writes the #EXTM3U header followed by every entry in insertion order.
func (p *Encoder) Encode(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "#EXTM3U"); err != nil {
		return err
	}

	if len(p.epgUrls) > 0 {
		if _, err := fmt.Fprintf(w, " tvg-url=\"%s\"", attrValue(strings.Join(p.epgUrls, ","))); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}

	for _, item := range p.items {
		if err := item.encode(w); err != nil {
			return err
		}
	}

	return nil
}
