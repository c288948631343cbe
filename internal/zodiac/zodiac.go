package zodiac

import (
	"errors"
	"fmt"
	"time"
)

// Sign identifies one of the twelve zodiac signs.
type Sign string

const (
	Capricorn   Sign = "Capricorn"
	Aquarius    Sign = "Aquarius"
	Pisces      Sign = "Pisces"
	Aries       Sign = "Aries"
	Taurus      Sign = "Taurus"
	Gemini      Sign = "Gemini"
	Cancer      Sign = "Cancer"
	Leo         Sign = "Leo"
	Virgo       Sign = "Virgo"
	Libra       Sign = "Libra"
	Scorpio     Sign = "Scorpio"
	Sagittarius Sign = "Sagittarius"
)

// ErrNoEntry reports a (month, day) pair no calendar entry covers. The
// ranges partition every valid calendar date, so this is an internal
// invariant violation (corrupt table or unvalidated input), never a
// user-facing validation case.
var ErrNoEntry = errors.New("no zodiac calendar entry matches date")

// span is one calendar entry: the sign applies from startMonth/startDay
// through endMonth/endDay, inclusive on both ends.
type span struct {
	sign       Sign
	startMonth time.Month
	startDay   int
	endMonth   time.Month
	endDay     int
}

// calendar is the fixed sign table, kept as data rather than branches.
// Capricorn sits first because it is the single entry that wraps the
// year boundary (late December into January); month being part of the
// match key keeps the two halves unambiguous.
var calendar = [12]span{
	{Capricorn, time.December, 22, time.January, 19},
	{Aquarius, time.January, 20, time.February, 18},
	{Pisces, time.February, 19, time.March, 20},
	{Aries, time.March, 21, time.April, 19},
	{Taurus, time.April, 20, time.May, 20},
	{Gemini, time.May, 21, time.June, 20},
	{Cancer, time.June, 21, time.July, 22},
	{Leo, time.July, 23, time.August, 22},
	{Virgo, time.August, 23, time.September, 22},
	{Libra, time.September, 23, time.October, 22},
	{Scorpio, time.October, 23, time.November, 21},
	{Sagittarius, time.November, 22, time.December, 21},
}

func (sp span) contains(month time.Month, day int) bool {
	if month == sp.startMonth && day >= sp.startDay {
		return true
	}
	return month == sp.endMonth && day <= sp.endDay
}

// SignFor returns the sign whose range covers the given month and day.
// The scan is total over valid calendar dates; leap days need no
// special handling because February 29 falls mid-range in Pisces.
// Date well-formedness is the caller's job. SignFor only reports
// ErrNoEntry when the pair escapes the table entirely.
func SignFor(month time.Month, day int) (Sign, error) {
	for _, sp := range calendar {
		if sp.contains(month, day) {
			return sp.sign, nil
		}
	}
	return "", fmt.Errorf("%w: month=%d day=%d", ErrNoEntry, month, day)
}

// SignForDate classifies a calendar date, ignoring time-of-day and
// location. Classification is deterministic: equal dates always yield
// equal signs.
func SignForDate(t time.Time) (Sign, error) {
	return SignFor(t.Month(), t.Day())
}

// Signs lists the twelve signs in calendar order starting from
// Capricorn.
func Signs() []Sign {
	out := make([]Sign, 0, len(calendar))
	for _, sp := range calendar {
		out = append(out, sp.sign)
	}
	return out
}
