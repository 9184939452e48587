package epg

import (
	"encoding/xml"
	"strings"
)

// Channel is a <channel> record of an XMLTV document.
type Channel struct {
	XMLName     xml.Name `xml:"channel"`
	ID          string   `xml:"id,attr"`
	DisplayName string   `xml:"display-name"`
	Icon        *Icon    `xml:"icon,omitempty"`
}

// Icon references an image by URL.
type Icon struct {
	Src string `xml:"src,attr"`
}

// NewChannel creates a channel record. The icon is omitted when logo is empty.
// Returns ErrEmptyChannelID or ErrEmptyName when the corresponding value is blank.
func NewChannel(id, name, logo string) (Channel, error) {
	if strings.TrimSpace(id) == "" {
		return Channel{}, ErrEmptyChannelID
	}
	if name == "" {
		return Channel{}, ErrEmptyName
	}

	return Channel{
		ID:          id,
		DisplayName: name,
		Icon:        newIcon(logo),
	}, nil
}

func newIcon(src string) *Icon {
	if src == "" {
		return nil
	}
	return &Icon{Src: src}
}
