package wxr

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/pressmapapp/pressmap-server/internal/errors"
)

// Older WXR versions declare versioned wp namespaces. Rewriting the
// declarations to 1.2 lets one set of struct tags decode every export.
var nsRewrites = [][2]string{
	{"wordpress.org/export/1.0/", "wordpress.org/export/1.2/"},
	{"wordpress.org/export/1.1/", "wordpress.org/export/1.2/"},
}

// Parse decodes a WXR document from r.
// Returns a validation error when the payload is not a WXR export.
func Parse(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeImportFailed, "read WXR payload")
	}

	for _, rw := range nsRewrites {
		raw = bytes.ReplaceAll(raw, []byte(rw[0]), []byte(rw[1]))
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	// Real-world exports contain stray entities and mis-nested markup.
	dec.Strict = false

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeImportFailed, "decode WXR XML")
	}

	if doc.Channel.WXRVersion == "" && len(doc.Channel.Items) == 0 {
		return nil, errors.Validation("document is not a WordPress WXR export")
	}

	return &doc, nil
}

// WXR timestamps are local site time without a zone.
const wxrTimeLayout = "2006-01-02 15:04:05"

// parseTime parses a WXR timestamp, returning nil for empty or the
// WordPress zero sentinel "0000-00-00 00:00:00".
func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return nil
	}
	t, err := time.Parse(wxrTimeLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
