package util

import (
	"testing"
	"time"
)

func TestAddBusinessDaysSkipsWeekends(t *testing.T) {
	// Friday + 1 business day lands on Monday.
	friday := time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC)
	got := AddBusinessDays(friday, 1)
	want := time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want.Format("2006-01-02"), got.Format("2006-01-02"))
	}
}

func TestAddBusinessDaysFiveFromMonday(t *testing.T) {
	monday := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)
	got := AddBusinessDays(monday, 5)
	want := time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want.Format("2006-01-02"), got.Format("2006-01-02"))
	}
}

func TestAddBusinessDaysZeroIsStart(t *testing.T) {
	saturday := time.Date(2025, 8, 23, 0, 0, 0, 0, time.UTC)
	if got := AddBusinessDays(saturday, 0); !got.Equal(saturday) {
		t.Fatalf("expected start date unchanged, got %s", got.Format("2006-01-02"))
	}
}

func TestAddBusinessDaysNeverLandsOnWeekend(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 14; day++ {
		for n := 1; n <= 10; n++ {
			got := AddBusinessDays(start.AddDate(0, 0, day), n)
			if wd := got.Weekday(); wd == time.Saturday || wd == time.Sunday {
				t.Fatalf("start=%s n=%d landed on %s", start.AddDate(0, 0, day).Format("2006-01-02"), n, wd)
			}
		}
	}
}

func TestAddBusinessDaysTraversesExactlyN(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	for n := 0; n <= 15; n++ {
		end := AddBusinessDays(start, n)
		count := 0
		for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
			if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
				count++
			}
		}
		if count != n {
			t.Fatalf("n=%d traversed %d weekdays", n, count)
		}
	}
}
