package epg

import "encoding/xml"

const defaultLang = "en"

// Programme is a <programme> record of an XMLTV document.
type Programme struct {
	XMLName  xml.Name `xml:"programme"`
	Start    string   `xml:"start,attr"`
	Stop     string   `xml:"stop,attr"`
	Channel  string   `xml:"channel,attr"`
	Title    Text     `xml:"title"`
	Desc     Text     `xml:"desc"`
	Icon     *Icon    `xml:"icon,omitempty"`
	Category Text     `xml:"category"`
}

// Text is a language-tagged text element.
type Text struct {
	Lang  string `xml:"lang,attr,omitempty"`
	Value string `xml:",chardata"`
}

// ProgrammeInfo carries the values rendered into a programme record.
type ProgrammeInfo struct {
	ChannelID   string
	Start       string
	Stop        string
	Title       string
	Description string
	Icon        string
	Category    string
}

// NewProgramme builds a programme record with English text elements.
// Start and Stop must already be formatted with FormatTime.
func NewProgramme(info ProgrammeInfo) (Programme, error) {
	if info.ChannelID == "" {
		return Programme{}, ErrEmptyChannelID
	}
	if info.Start == "" || info.Stop == "" {
		return Programme{}, ErrEmptyTimes
	}

	return Programme{
		Start:    info.Start,
		Stop:     info.Stop,
		Channel:  info.ChannelID,
		Title:    Text{Lang: defaultLang, Value: info.Title},
		Desc:     Text{Lang: defaultLang, Value: info.Description},
		Icon:     newIcon(info.Icon),
		Category: Text{Lang: defaultLang, Value: info.Category},
	}, nil
}
