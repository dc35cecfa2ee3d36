package docstore

import (
	"time"
)

// Timestamp is the store-native point in time. Convert it with Time at the boundary.
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

func TimestampOf(t time.Time) Timestamp {
	return Timestamp{
		Seconds: t.Unix(),
		Nanos:   int32(t.Nanosecond()),
	}
}

func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos))
}

// Compare returns -1, 0 or +1.
func (ts Timestamp) Compare(other Timestamp) int {
	switch {
	case ts.Seconds < other.Seconds:
		return -1
	case ts.Seconds > other.Seconds:
		return 1
	case ts.Nanos < other.Nanos:
		return -1
	case ts.Nanos > other.Nanos:
		return 1
	default:
		return 0
	}
}

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store's current time when a document is written.
// All sentinels of one write resolve to the same instant.
var ServerTimestamp any = serverTimestamp{}

// IsPending reports whether v is a ServerTimestamp which has not been resolved by a write yet.
// Every Timestamp is a real instant, the Unix epoch included.
func IsPending(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}
