package m3u

import (
	"fmt"
	"io"
)

// Channel is one playlist entry: an #EXTINF line followed by its URI.
type Channel struct {
	Title    string
	URI      string
	Duration float64
	TVGTags  *TVGTags
}

func (pi *Channel) encode(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "#EXTINF:%0.0f", pi.Duration); err != nil {
		return err
	}

	if pi.TVGTags != nil {
		if err := pi.TVGTags.encode(w); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, ",%s\n%s\n", clean(pi.Title), clean(pi.URI)); err != nil {
		return err
	}

	return nil
}
