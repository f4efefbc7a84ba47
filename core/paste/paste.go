// Package paste defines the paste-event model. Events are recorded by the
// upstream editor at the moment of paste and read-only thereafter; the
// reconciliation engine never creates or mutates them.
package paste

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/zeebo/blake3"
)

// Event is one recorded paste. StartIndex and EndIndex are the offsets the
// editor observed at capture time; they go stale as the document is edited
// and no matcher relies on them. All matching is content-based.
type Event struct {
	Text       string    `json:"text"`
	StartIndex int       `json:"start_index,omitempty"`
	EndIndex   int       `json:"end_index,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Fingerprint returns the BLAKE3 hash of the event's text and capture
// time, hex-encoded. The session store uses it to dedupe re-recorded
// events.
func (e Event) Fingerprint() string {
	h := blake3.New()
	h.Write([]byte(e.Text))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(e.Timestamp.UnixNano(), 10)))
	return hex.EncodeToString(h.Sum(nil))
}
