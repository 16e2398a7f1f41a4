package marketdata

import "time"

// Session names a window of the trading day determined by UTC hour.
type Session string

const (
	SessionAsian   Session = "Asian"
	SessionLondon  Session = "London"
	SessionNewYork Session = "NY"
	SessionUnknown Session = "Unknown"
)

// SessionInfo describes which trading session a timestamp falls into.
type SessionInfo struct {
	Session      Session
	SessionStart time.Time
	SessionEnd   time.Time
	Timestamp    time.Time
}

// SessionAt classifies a timestamp into a trading session by its UTC hour.
// The mapping is half-open: [0,7) Asian, [7,14) London, [14,22) NY. Hours in
// [22,24) fall outside the named sessions; for those the start and end both
// collapse to the input timestamp, a convention downstream consumers rely on.
func SessionAt(ts time.Time) SessionInfo {
	utc := ts.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)

	switch hour := utc.Hour(); {
	case hour < 7:
		return SessionInfo{
			Session:      SessionAsian,
			SessionStart: midnight,
			SessionEnd:   midnight.Add(7 * time.Hour),
			Timestamp:    ts,
		}
	case hour < 14:
		return SessionInfo{
			Session:      SessionLondon,
			SessionStart: midnight.Add(7 * time.Hour),
			SessionEnd:   midnight.Add(14 * time.Hour),
			Timestamp:    ts,
		}
	case hour < 22:
		return SessionInfo{
			Session:      SessionNewYork,
			SessionStart: midnight.Add(14 * time.Hour),
			SessionEnd:   midnight.Add(22 * time.Hour),
			Timestamp:    ts,
		}
	default:
		return SessionInfo{
			Session:      SessionUnknown,
			SessionStart: ts,
			SessionEnd:   ts,
			Timestamp:    ts,
		}
	}
}
