package seed

import (
	"fmt"
	"strconv"
	"time"

	"github.com/banshee-data/maze3d/internal/timeutil"
)

const (
	// DefaultZone is the zone the daily maze rolls over in.
	DefaultZone = "Asia/Seoul"
	// DefaultResetHour is the local hour at which a new day's maze starts.
	DefaultResetHour = 12

	kstOffset  = 9 * time.Hour
	dayKeyForm = "20060102"
)

// DayKey returns the yyyyMMdd key of the effective day at now in loc. Before
// resetHour the previous calendar day is still in effect.
func DayKey(now time.Time, loc *time.Location, resetHour int) string {
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if local.Hour() < resetHour {
		day = day.AddDate(0, 0, -1)
	}
	return day.Format(dayKeyForm)
}

// FromDayKey parses a yyyyMMdd key into its integer seed.
func FromDayKey(key string) (int32, error) {
	if _, err := time.Parse(dayKeyForm, key); err != nil {
		return 0, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	v, err := strconv.ParseInt(key, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return int32(v), nil
}

// Daily computes the seed of the current day's maze.
type Daily struct {
	Clock     timeutil.Clock
	Location  *time.Location
	ResetHour int
}

// NewDaily returns a Daily on the real clock in the default zone and reset
// hour.
func NewDaily() Daily {
	return Daily{
		Clock:     timeutil.RealClock{},
		Location:  timeutil.LoadLocation(DefaultZone, kstOffset),
		ResetHour: DefaultResetHour,
	}
}

// Key returns the current day key.
func (d Daily) Key() string {
	clock := d.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	loc := d.Location
	if loc == nil {
		loc = timeutil.LoadLocation(DefaultZone, kstOffset)
	}
	return DayKey(clock.Now(), loc, d.ResetHour)
}

// Seed returns the current day's seed.
func (d Daily) Seed() int32 {
	// Key always formats a valid date.
	v, _ := FromDayKey(d.Key())
	return v
}

// Variant returns the DateVariant policy based on the current day's seed.
func (d Daily) Variant() DateVariant {
	return DateVariant{Base: d.Seed()}
}
