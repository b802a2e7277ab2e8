package schedule

import (
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/teambition/rrule-go"
)

func TestParseTime(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		In         string
		WantHour   int
		WantMinute int
		WantOK     bool
	}{
		{In: "12:00 AM", WantHour: 0, WantMinute: 0, WantOK: true},
		{In: "12:00 PM", WantHour: 12, WantMinute: 0, WantOK: true},
		{In: "1:15 PM", WantHour: 13, WantMinute: 15, WantOK: true},
		{In: "7:30 pm", WantHour: 19, WantMinute: 30, WantOK: true},
		{In: " 09:05AM ", WantHour: 9, WantMinute: 5, WantOK: true},
		{In: "11:59 PM", WantHour: 23, WantMinute: 59, WantOK: true},
		{In: "7:30"},
		{In: "7:3 PM"},
		{In: "7:60 PM"},
		{In: "13:00 PM"},
		{In: "0:30 AM"},
		{In: "123:00 PM"},
		{In: "noon"},
		{In: ""},
	} {
		hour, minute, ok := ParseTime(test.In)
		if ok != test.WantOK {
			t.Errorf("ParseTime(%q) ok = %v, want %v", test.In, ok, test.WantOK)
			continue
		}
		if hour != test.WantHour || minute != test.WantMinute {
			t.Errorf("ParseTime(%q) = %d:%02d, want %d:%02d", test.In, hour, minute, test.WantHour, test.WantMinute)
		}
	}
}

func TestMeetupStart(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("test", -5*60*60)
	for _, test := range []struct {
		Name    string
		DateKey string
		Time    string
		Want    time.Time
		WantOK  bool
	}{
		{
			Name:    "evening",
			DateKey: "2026-10-21",
			Time:    "7:30 PM",
			Want:    time.Date(2026, time.October, 21, 19, 30, 0, 0, loc),
			WantOK:  true,
		},
		{
			Name:    "midnight",
			DateKey: "2026-1-2",
			Time:    "12:00 AM",
			Want:    time.Date(2026, time.January, 2, 0, 0, 0, 0, loc),
			WantOK:  true,
		},
		{Name: "two components", DateKey: "2026-10", Time: "7:30 PM"},
		{Name: "four components", DateKey: "2026-10-21-1", Time: "7:30 PM"},
		{Name: "non numeric", DateKey: "2026-Oct-21", Time: "7:30 PM"},
		{Name: "bad month", DateKey: "2026-13-01", Time: "7:30 PM"},
		{Name: "overflowing day", DateKey: "2026-02-30", Time: "7:30 PM"},
		{Name: "bad time", DateKey: "2026-10-21", Time: "19:30"},
		{Name: "empty", DateKey: "", Time: ""},
	} {
		got, ok := MeetupStart(test.DateKey, test.Time, loc)
		if ok != test.WantOK {
			t.Errorf("%s: ok = %v, want %v", test.Name, ok, test.WantOK)
			continue
		}
		if !got.Equal(test.Want) {
			t.Errorf("%s: got %v, want %v", test.Name, got, test.Want)
		}
	}
}

func TestNextGameStart(t *testing.T) {
	t.Parallel()

	// Wednesday evening.
	now := time.Date(2026, time.October, 21, 19, 0, 0, 0, time.UTC)

	for _, test := range []struct {
		In     string
		Want   time.Time
		WantOK bool
	}{
		{In: "Wed 8:00 PM", Want: time.Date(2026, time.October, 21, 20, 0, 0, 0, time.UTC), WantOK: true},
		{In: "Wed 6:00 PM", Want: time.Date(2026, time.October, 28, 18, 0, 0, 0, time.UTC), WantOK: true},
		{In: "wed 7:00 PM", Want: time.Date(2026, time.October, 28, 19, 0, 0, 0, time.UTC), WantOK: true},
		{In: "Fri 9:15 am", Want: time.Date(2026, time.October, 23, 9, 15, 0, 0, time.UTC), WantOK: true},
		{In: "Monday 6:30 PM", Want: time.Date(2026, time.October, 26, 18, 30, 0, 0, time.UTC), WantOK: true},
		{In: "Thurs 6:00 PM", Want: time.Date(2026, time.October, 22, 18, 0, 0, 0, time.UTC), WantOK: true},
		{In: "Tue 6:00 PM", Want: time.Date(2026, time.October, 27, 18, 0, 0, 0, time.UTC), WantOK: true},
		{In: "Wed"},
		{In: "Xyz 6:00 PM"},
		{In: "Wed 18:00"},
		{In: "We 6:00 PM"},
		{In: "Sunburn 6:00 PM"},
		{In: "Wedge 6:00 PM"},
		{In: "Wednesdays 6:00 PM"},
		{In: ""},
	} {
		got, ok := NextGameStart(test.In, now)
		if ok != test.WantOK {
			t.Errorf("NextGameStart(%q) ok = %v, want %v", test.In, ok, test.WantOK)
			continue
		}
		if diff := deep.Equal(got, test.Want); diff != nil {
			t.Errorf("NextGameStart(%q): %v", test.In, diff)
		}
	}
}

func TestNextGameStartPassedIsOneWeekLater(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.October, 21, 19, 0, 0, 0, time.UTC)
	naive := time.Date(2026, time.October, 21, 9, 0, 0, 0, time.UTC)

	got, ok := NextGameStart("Wed 9:00 AM", now)
	if !ok {
		t.Fatal("expected a parsed date")
	}
	if want := naive.AddDate(0, 0, 7); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// Cross-checks the weekday arithmetic against an RRULE expansion for every
// weekday and a spread of reference times.
func TestNextGameStartMatchesWeeklyRule(t *testing.T) {
	t.Parallel()

	type day struct {
		rule rrule.Weekday
		want time.Weekday
	}
	byDay := map[string]day{
		"Sun": {rrule.SU, time.Sunday}, "Mon": {rrule.MO, time.Monday},
		"Tue": {rrule.TU, time.Tuesday}, "Wed": {rrule.WE, time.Wednesday},
		"Thu": {rrule.TH, time.Thursday}, "Fri": {rrule.FR, time.Friday},
		"Sat": {rrule.SA, time.Saturday},
	}
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	start := time.Date(2026, time.October, 18, 0, 0, 0, 0, loc)
	for h := 0; h < 7*24; h += 5 {
		now := start.Add(time.Duration(h) * time.Hour)
		for name, wd := range byDay {
			got, ok := NextGameStart(name+" 6:00 PM", now)
			if !ok {
				t.Fatalf("NextGameStart(%q) failed", name)
			}
			if !got.After(now) {
				t.Errorf("%s at %v: %v is not after now", name, now, got)
			}
			if got.Weekday() != wd.want {
				t.Errorf("%s at %v: weekday %v", name, now, got.Weekday())
			}

			rule, err := rrule.NewRRule(rrule.ROption{
				Freq:      rrule.WEEKLY,
				Byweekday: []rrule.Weekday{wd.rule},
				Byhour:    []int{18},
				Byminute:  []int{0},
				Bysecond:  []int{0},
				Dtstart:   now.AddDate(0, 0, -7),
			})
			if err != nil {
				t.Fatal(err)
			}
			if want := rule.After(now, false); !got.Equal(want) {
				t.Errorf("%s at %v: got %v, rule says %v", name, now, got, want)
			}
		}
	}
}
