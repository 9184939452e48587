package epg

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Guide is the <tv> root of an XMLTV document. Channels are always written
// before programmes.
type Guide struct {
	XMLName       xml.Name    `xml:"tv"`
	GeneratorName string      `xml:"generator-info-name,attr,omitempty"`
	Channels      []Channel   `xml:"channel"`
	Programmes    []Programme `xml:"programme"`
}

// NewGuide returns an empty guide attributed to the given generator.
func NewGuide(generatorName string) *Guide {
	return &Guide{GeneratorName: generatorName}
}

// AddChannel appends a channel record.
func (g *Guide) AddChannel(ch Channel) {
	g.Channels = append(g.Channels, ch)
}

// AddProgramme appends a programme record.
func (g *Guide) AddProgramme(p Programme) {
	g.Programmes = append(g.Programmes, p)
}

// Encode writes the guide as indented XML with a UTF-8 declaration.
func (g *Guide) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encoding guide: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding guide: %w", err)
	}

	_, err := io.WriteString(w, "\n")
	return err
}
