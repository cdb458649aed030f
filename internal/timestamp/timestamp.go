// Package timestamp implements the (seconds, nanos) pair of spec §4.M:
// Unix-epoch and Windows-tick conversions, duration arithmetic with
// explicit carry/borrow, and signed diffing. Nanos are always normalised
// into [0, 1e9). Relative, human-readable rendering is grounded on the
// teacher's declared `github.com/dustin/go-humanize` dependency, given a
// concrete home here; the `clock.to-string` builtin returns ToString's
// absolute form instead.
package timestamp

import (
	"time"

	"github.com/dustin/go-humanize"
)

const (
	nanosPerSecond = int64(1e9)
	// windowsEpochOffsetSeconds is the number of seconds between the
	// Windows FILETIME epoch (1601-01-01) and the Unix epoch
	// (1970-01-01).
	windowsEpochOffsetSeconds = 11644473600
	windowsTicksPerSecond     = int64(1e7)
)

// Timestamp is an absolute point in time, stored as whole seconds since
// the Unix epoch plus a nanosecond remainder.
type Timestamp struct {
	Seconds int64
	Nanos   int64
}

// Normalize carries/borrows Nanos back into [0, 1e9).
func (t Timestamp) Normalize() Timestamp {
	for t.Nanos < 0 {
		t.Nanos += nanosPerSecond
		t.Seconds--
	}
	for t.Nanos >= nanosPerSecond {
		t.Nanos -= nanosPerSecond
		t.Seconds++
	}
	return t
}

// FromUnix builds a Timestamp from Unix-epoch seconds and a nanosecond
// remainder.
func FromUnix(seconds, nanos int64) Timestamp {
	return Timestamp{Seconds: seconds, Nanos: nanos}.Normalize()
}

// ToUnix returns the Unix-epoch (seconds, nanos) pair.
func (t Timestamp) ToUnix() (int64, int64) { return t.Seconds, t.Nanos }

// FromWindowsTicks builds a Timestamp from a Windows FILETIME tick count
// (100ns units since 1601-01-01).
func FromWindowsTicks(ticks int64) Timestamp {
	wholeSecs := ticks / windowsTicksPerSecond
	remTicks := ticks % windowsTicksPerSecond
	return Timestamp{
		Seconds: wholeSecs - windowsEpochOffsetSeconds,
		Nanos:   remTicks * 100,
	}.Normalize()
}

// ToWindowsTicks returns the Windows FILETIME tick count equivalent to t.
func (t Timestamp) ToWindowsTicks() int64 {
	secs := t.Seconds + windowsEpochOffsetSeconds
	return secs*windowsTicksPerSecond + t.Nanos/100
}

// AddDuration adds a signed duration expressed in one of the spec's named
// units ("days", "hours", "minutes", "seconds", "ms", "us", "ns") to t.
func (t Timestamp) AddDuration(amount float64, unit string) Timestamp {
	nanos := amount * unitToNanos(unit)
	whole := int64(nanos)
	frac := nanos - float64(whole)
	return Timestamp{
		Seconds: t.Seconds + whole/nanosPerSecond,
		Nanos:   t.Nanos + whole%nanosPerSecond + int64(frac),
	}.Normalize()
}

func unitToNanos(unit string) float64 {
	switch unit {
	case "days":
		return 24 * 60 * 60 * 1e9
	case "hours":
		return 60 * 60 * 1e9
	case "minutes":
		return 60 * 1e9
	case "seconds":
		return 1e9
	case "ms":
		return 1e6
	case "us":
		return 1e3
	case "ns":
		return 1
	default:
		return 0
	}
}

// Diff returns t minus other, as a signed number of real seconds.
func Diff(t, other Timestamp) float64 {
	return float64(t.Seconds-other.Seconds) + float64(t.Nanos-other.Nanos)/1e9
}

func toGoTime(t Timestamp) time.Time {
	return time.Unix(t.Seconds, t.Nanos)
}

// String renders a relative, human-friendly form (e.g. "3 hours ago"),
// matching the teacher's preference for humanize.Time over a raw
// ISO-8601 rendering in diagnostics.
func (t Timestamp) String() string {
	return humanize.Time(toGoTime(t))
}

// ToString renders the absolute RFC3339 form used by the `timestamp`
// primitive's default stringification.
func (t Timestamp) ToString() string {
	return toGoTime(t).UTC().Format("2006-01-02T15:04:05.000000000Z")
}
