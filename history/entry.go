package history

import (
	"fmt"
	"time"

	"github.com/reelplay/reelplay/util"
)

// Entry is the saved progress of a single source, keyed by its URI.
type Entry struct {
	URI             string `json:"uri" jsonschema:"description=Source URI the entry is keyed by"`
	PositionMillis  int64  `json:"position_millis" jsonschema:"minimum=0"`
	DurationMillis  int64  `json:"duration_millis" jsonschema:"minimum=0"`
	TimestampMillis int64  `json:"timestamp_millis" jsonschema:"description=Unix time of the last write in milliseconds"`
	Title           string `json:"title"`
}

// NewEntry builds an entry for uri stamped with now.
func NewEntry(uri, title string, position, duration time.Duration, now time.Time) Entry {
	return Entry{
		URI:             uri,
		PositionMillis:  position.Milliseconds(),
		DurationMillis:  duration.Milliseconds(),
		TimestampMillis: now.UnixMilli(),
		Title:           title,
	}
}

func (e Entry) Position() time.Duration {
	return time.Duration(e.PositionMillis) * time.Millisecond
}

func (e Entry) Duration() time.Duration {
	return time.Duration(e.DurationMillis) * time.Millisecond
}

func (e Entry) WatchedAt() time.Time {
	return time.UnixMilli(e.TimestampMillis)
}

// Progress returns the watched fraction in [0, 1].
func (e Entry) Progress() float64 {
	if e.DurationMillis <= 0 {
		return 0
	}

	return util.Clamp(float64(e.PositionMillis)/float64(e.DurationMillis), 0, 1)
}

func (e Entry) String() string {
	name := e.Title
	if name == "" {
		name = e.URI
	}

	return fmt.Sprintf("%s : %s / %s", name, util.FormatDuration(e.Position()), util.FormatDuration(e.Duration()))
}
