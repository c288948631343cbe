package zodiac

import (
	"errors"
	"testing"
	"time"
)

func TestSignForBoundaryDates(t *testing.T) {
	cases := []struct {
		date string
		want Sign
	}{
		{"1990-05-15", Taurus},
		{"2000-01-19", Capricorn},
		{"2000-01-20", Aquarius},
		{"2000-12-22", Capricorn},
		{"2000-12-21", Sagittarius},
		{"2000-03-21", Aries},
		{"2000-03-20", Pisces},
		{"2000-02-18", Aquarius},
		{"2000-02-19", Pisces},
		{"2000-04-19", Aries},
		{"2000-04-20", Taurus},
		{"2000-05-20", Taurus},
		{"2000-05-21", Gemini},
		{"2000-06-20", Gemini},
		{"2000-06-21", Cancer},
		{"2000-07-22", Cancer},
		{"2000-07-23", Leo},
		{"2000-08-22", Leo},
		{"2000-08-23", Virgo},
		{"2000-09-22", Virgo},
		{"2000-09-23", Libra},
		{"2000-10-22", Libra},
		{"2000-10-23", Scorpio},
		{"2000-11-21", Scorpio},
		{"2000-11-22", Sagittarius},
		{"2000-01-01", Capricorn},
		{"2000-12-31", Capricorn},
		{"2000-02-29", Pisces},
	}
	for _, tc := range cases {
		d, err := time.Parse("2006-01-02", tc.date)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.date, err)
		}
		got, err := SignForDate(d)
		if err != nil {
			t.Fatalf("SignForDate(%s) error = %v", tc.date, err)
		}
		if got != tc.want {
			t.Fatalf("SignForDate(%s) = %s, want %s", tc.date, got, tc.want)
		}
	}
}

func TestCalendarCoversEveryDayExactlyOnce(t *testing.T) {
	// Walk a leap year so February 29 is included.
	day := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	for day.Year() == 2000 {
		matches := 0
		for _, sp := range calendar {
			if sp.contains(day.Month(), day.Day()) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("%s matched %d calendar entries, want exactly 1", day.Format("01-02"), matches)
		}
		if _, err := SignFor(day.Month(), day.Day()); err != nil {
			t.Fatalf("SignFor(%s) error = %v", day.Format("01-02"), err)
		}
		day = day.AddDate(0, 0, 1)
	}
}

func TestSignForDateIsIdempotent(t *testing.T) {
	d := time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC)
	first, err := SignForDate(d)
	if err != nil {
		t.Fatalf("first SignForDate error = %v", err)
	}
	second, err := SignForDate(d)
	if err != nil {
		t.Fatalf("second SignForDate error = %v", err)
	}
	if first != second {
		t.Fatalf("SignForDate not stable: %s then %s", first, second)
	}
}

func TestSignForOutOfDomainMonth(t *testing.T) {
	if _, err := SignFor(time.Month(13), 10); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("SignFor(13, 10) error = %v, want ErrNoEntry", err)
	}
	if _, err := SignFor(time.Month(0), 5); !errors.Is(err, ErrNoEntry) {
		t.Fatalf("SignFor(0, 5) error = %v, want ErrNoEntry", err)
	}
}

func TestSignsOrder(t *testing.T) {
	signs := Signs()
	if len(signs) != 12 {
		t.Fatalf("Signs() length = %d, want 12", len(signs))
	}
	if signs[0] != Capricorn {
		t.Fatalf("Signs()[0] = %s, want %s", signs[0], Capricorn)
	}
	if signs[11] != Sagittarius {
		t.Fatalf("Signs()[11] = %s, want %s", signs[11], Sagittarius)
	}
}
