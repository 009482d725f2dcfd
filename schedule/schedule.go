// Package schedule defines schedules of bestbot scheduled actions and sets them up as gocron jobs
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/marcsantiago/gocron"
	"github.com/pkg/errors"
)

// Definition represents when a scheduled action runs
type Definition struct {
	// Interval value (every 1 minute would be expressed with an interval of 1). Must be set explicitly or implicitly (a weekday value implicitly sets the interval to 1)
	Interval uint64

	// Must be set explicitly or implicitly ("weeks" is implicitly set when "Weekday" is set). Valid time units are: "weeks", "hours", "days", "minutes", "seconds"
	Unit string

	// Optional day of the week. If set, unit and interval are ignored and implicitly considered to be "every 1 week"
	Weekday string

	// Optional "at time" value (i.e. "10:30")
	AtTime string
}

// Unit values
const (
	Weeks   = "weeks"
	Hours   = "hours"
	Days    = "days"
	Minutes = "minutes"
	Seconds = "seconds"
)

const atTimeLayout = "15:04"

var weekdays = map[string]time.Weekday{
	strings.ToLower(time.Monday.String()):    time.Monday,
	strings.ToLower(time.Tuesday.String()):   time.Tuesday,
	strings.ToLower(time.Wednesday.String()): time.Wednesday,
	strings.ToLower(time.Thursday.String()):  time.Thursday,
	strings.ToLower(time.Friday.String()):    time.Friday,
	strings.ToLower(time.Saturday.String()):  time.Saturday,
	strings.ToLower(time.Sunday.String()):    time.Sunday,
}

// Weekly returns the definition of a schedule running every week on weekday (case-insensitive, i.e. "monday") at
// atTime ("HH:MM")
func Weekly(weekday string, atTime string) (d Definition, err error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(weekday))]
	if !ok {
		return Definition{}, fmt.Errorf("invalid weekday [%s]", weekday)
	}

	if _, err = time.Parse(atTimeLayout, atTime); err != nil {
		return Definition{}, errors.Wrapf(err, "invalid time [%s], expected format is HH:MM", atTime)
	}

	return Definition{Interval: 1, Unit: Weeks, Weekday: wd.String(), AtTime: atTime}, nil
}

// String returns a human-friendly string for the Definition
func (d Definition) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Every ")

	if d.Weekday != "" {
		fmt.Fprintf(&b, "%s", d.Weekday)
	} else if d.Interval == 1 {
		fmt.Fprintf(&b, "%s", strings.TrimSuffix(d.Unit, "s"))
	} else {
		fmt.Fprintf(&b, "%d %s", d.Interval, d.Unit)
	}

	if d.AtTime != "" {
		fmt.Fprintf(&b, " at %s", d.AtTime)
	}

	return b.String()
}

// validUnits are the units supported by NewJob
var validUnits = map[string]bool{Weeks: true, Hours: true, Days: true, Minutes: true, Seconds: true}

// validate checks that d can be set up as a gocron job
func (d Definition) validate() (err error) {
	if d.Weekday != "" {
		if _, ok := weekdays[strings.ToLower(d.Weekday)]; !ok {
			return fmt.Errorf("invalid schedule [%s], unknown weekday [%s]", d, d.Weekday)
		}

		return nil
	}

	if d.Interval == 0 {
		return fmt.Errorf("invalid schedule [%s], the interval must be at least 1", d)
	}

	if !validUnits[d.Unit] {
		return fmt.Errorf("invalid schedule [%s], unknown unit [%s]", d, d.Unit)
	}

	return nil
}

// NewJob sets up the gocron.Job with the schedule and leaves the task undefined for the caller to set up. Invalid
// definitions are rejected before anything is added to the scheduler
func NewJob(s *gocron.Scheduler, d Definition) (j *gocron.Job, err error) {
	if err = d.validate(); err != nil {
		return nil, err
	}

	interval := d.Interval
	if d.Weekday != "" {
		interval = 1
	}

	j = s.Every(interval, false)

	if d.Weekday != "" {
		switch weekdays[strings.ToLower(d.Weekday)] {
		case time.Monday:
			j = j.Monday()
		case time.Tuesday:
			j = j.Tuesday()
		case time.Wednesday:
			j = j.Wednesday()
		case time.Thursday:
			j = j.Thursday()
		case time.Friday:
			j = j.Friday()
		case time.Saturday:
			j = j.Saturday()
		case time.Sunday:
			j = j.Sunday()
		}
	} else {
		switch d.Unit {
		case Weeks:
			j = j.Weeks()
		case Hours:
			j = j.Hours()
		case Days:
			j = j.Days()
		case Minutes:
			j = j.Minutes()
		case Seconds:
			j = j.Seconds()
		}
	}

	if d.AtTime != "" {
		j = j.At(d.AtTime)
	}

	if j.Err() != nil {
		return nil, j.Err()
	}

	return j, nil
}
