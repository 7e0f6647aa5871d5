package timeutil

import (
	"fmt"
	"sync"
	"time"
	_ "time/tzdata" // processor timestamps need Europe/Belgrade even on minimal images
)

// ProcessorZone is the time zone the payment processor reports local timestamps in
const ProcessorZone = "Europe/Belgrade"

var (
	processorLoc     *time.Location
	processorLocOnce sync.Once
)

// Now returns the current time in UTC
// Always use this instead of time.Now() to ensure timezone consistency
func Now() time.Time {
	return time.Now().UTC()
}

// ProcessorLocation returns the processor's time zone, or UTC if it cannot be loaded
func ProcessorLocation() *time.Location {
	processorLocOnce.Do(func() {
		loc, err := time.LoadLocation(ProcessorZone)
		if err != nil {
			loc = time.UTC
		}
		processorLoc = loc
	})
	return processorLoc
}

// ParseFirst parses value in loc with the first layout that fits and returns it in UTC
func ParseFirst(layouts []string, value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("time %q matches none of %d layouts", value, len(layouts))
}
