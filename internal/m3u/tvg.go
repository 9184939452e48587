package m3u

import (
	"fmt"
	"io"
	"strings"
)

// TVGTags are the attributes players use to match an entry with its guide
// channel and to display it.
type TVGTags struct {
	ID         string
	Name       string
	Logo       string
	GroupTitle string
}

func (t *TVGTags) encode(w io.Writer) error {
	attrs := []struct{ key, value string }{
		{"tvg-id", t.ID},
		{"tvg-name", t.Name},
		{"tvg-logo", t.Logo},
		{"group-title", t.GroupTitle},
	}

	for _, a := range attrs {
		if a.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, " %s=\"%s\"", a.key, attrValue(a.value)); err != nil {
			return err
		}
	}

	return nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// clean keeps a value on a single playlist line.
func clean(s string) string {
	return lineBreaks.Replace(s)
}

// attrValue makes a value safe inside a double-quoted attribute.
func attrValue(s string) string {
	return strings.ReplaceAll(clean(s), `"`, "'")
}
