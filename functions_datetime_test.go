package rowflow

import (
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func ts(t *testing.T, s string) Value {
	t.Helper()
	parsed, err := time.Parse(DefaultTimestampFormat, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return NewDateTime(parsed)
}

func TestDateTimeFieldFunctions(t *testing.T) {
	// 2023-03-15 is a Wednesday.
	v := ts(t, "2023-03-15 13:45:59")

	cases := []struct {
		name string
		want int64
	}{
		{"year", 2023},
		{"quarter", 1},
		{"month", 3},
		{"day", 15},
		{"dayofmonth", 15},
		{"dayofyear", 74},
		{"dayofweek", 4},
		{"weekday", 2},
		{"weekofyear", 11},
		{"hour", 13},
		{"minute", 45},
		{"second", 59},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			wantLong(t, evalFn(t, c.name, v), c.want)
		})
	}

	t.Run("non-timestamp argument is an Error", func(t *testing.T) {
		if !evalFn(t, "year", NewLong(2023)).IsError() {
			t.Fatalf("year(long) should be Error")
		}
	})
}

func TestDateTimeArithmetic(t *testing.T) {
	v := ts(t, "2023-03-15 00:00:00")

	checkDate := func(t *testing.T, got Value, want string) {
		t.Helper()
		dt, e := got.GetDateTime()
		if e.IsError() {
			t.Fatalf("got %v, want %s", got, want)
		}
		if f := dt.Format(DefaultTimestampFormat); f != want {
			t.Fatalf("got %s, want %s", f, want)
		}
	}

	checkDate(t, evalFn(t, "add_days", v, NewLong(17)), "2023-04-01 00:00:00")
	checkDate(t, evalFn(t, "date_add", v, NewLong(1)), "2023-03-16 00:00:00")
	checkDate(t, evalFn(t, "date_sub", v, NewLong(15)), "2023-02-28 00:00:00")
	checkDate(t, evalFn(t, "add_months", v, NewLong(2)), "2023-05-15 00:00:00")
	checkDate(t, evalFn(t, "last_day", v), "2023-03-31 00:00:00")
	checkDate(t, evalFn(t, "next_day", v, NewString("monday")), "2023-03-20 00:00:00")
	checkDate(t, evalFn(t, "make_date", NewLong(2021), NewLong(2), NewLong(3)), "2021-02-03 00:00:00")
	checkDate(t, evalFn(t, "make_timestamp", NewLong(2021), NewLong(2), NewLong(3), NewLong(4), NewLong(5), NewLong(6)), "2021-02-03 04:05:06")

	wantLong(t, evalFn(t, "date_diff", ts(t, "2023-03-20 00:00:00"), v), 5)

	t.Run("unknown weekday name is an Error", func(t *testing.T) {
		if !evalFn(t, "next_day", v, NewString("someday")).IsError() {
			t.Fatalf("expected Error for unknown weekday")
		}
	})
}

func TestUnixConversions(t *testing.T) {
	v := ts(t, "2023-03-15 13:45:59")
	unix := int64(1678887959)

	wantLong(t, evalFn(t, "unix_seconds", v), unix)
	wantLong(t, evalFn(t, "unix_millis", v), unix*1000)
	wantLong(t, evalFn(t, "unix_micros", v), unix*1000000)
	wantLong(t, evalFn(t, "unix_timestamp", v), unix)
	wantLong(t, evalFn(t, "to_unix_timestamp", v), unix)
	wantLong(t, evalFn(t, "unix_date", v), unix/86400)

	roundTrip := evalFn(t, "timestamp_seconds", NewLong(unix))
	dt, e := roundTrip.GetDateTime()
	if e.IsError() || dt.Unix() != unix {
		t.Fatalf("timestamp_seconds round trip = %v", roundTrip)
	}
	roundTrip = evalFn(t, "timestamp_millis", NewLong(unix*1000+250))
	dt, _ = roundTrip.GetDateTime()
	if dt.Nanosecond() != 250000000 {
		t.Fatalf("timestamp_millis fraction = %d ns", dt.Nanosecond())
	}

	t.Run("date_from_unix_date", func(t *testing.T) {
		got := evalFn(t, "date_from_unix_date", NewLong(19431))
		dt, e := got.GetDateTime()
		if e.IsError() || dt.Format(DefaultDateFormat) != "2023-03-15" {
			t.Fatalf("date_from_unix_date = %v", got)
		}
	})
}

func TestParseTimestampFunctions(t *testing.T) {
	got := evalFn(t, "to_timestamp", NewString("2023-03-15 13:45:59"))
	dt, e := got.GetDateTime()
	if e.IsError() || dt.Hour() != 13 {
		t.Fatalf("to_timestamp = %v", got)
	}
	if !evalFn(t, "timestamp", NewString("not a time")).IsError() {
		t.Fatalf("unparsable timestamp should be Error")
	}

	t.Run("custom format", func(t *testing.T) {
		got := evalFn(t, "to_timestamp", NewString("15/03/2023"), NewString("02/01/2006"))
		dt, e := got.GetDateTime()
		if e.IsError() || dt.Day() != 15 {
			t.Fatalf("to_timestamp with format = %v", got)
		}
	})
}

func TestUTCTimestampShifting(t *testing.T) {
	// 12:00 UTC is 07:00 in New York in March (EST is UTC-5 on the 1st).
	v := ts(t, "2023-03-01 12:00:00")

	shifted := evalFn(t, "from_utc_timestamp", v, NewString("America/New_York"))
	dt, e := shifted.GetDateTime()
	if e.IsError() {
		t.Fatalf("from_utc_timestamp: %v", e)
	}
	if dt.Hour() != 7 {
		t.Fatalf("from_utc_timestamp hour = %d, want 7", dt.Hour())
	}

	back := evalFn(t, "to_utc_timestamp", shifted, NewString("America/New_York"))
	dt, e = back.GetDateTime()
	if e.IsError() {
		t.Fatalf("to_utc_timestamp: %v", e)
	}
	if dt.Hour() != 12 {
		t.Fatalf("to_utc_timestamp hour = %d, want 12", dt.Hour())
	}

	if !evalFn(t, "from_utc_timestamp", v, NewString("Not/AZone")).IsError() {
		t.Fatalf("unknown zone should be Error")
	}
}

func TestClockBackedFunctions(t *testing.T) {
	clock := clockz.NewFakeClock()
	bctx := NewBuildContext().WithClock(clock)

	fn, ok := bctx.LookupFunction("now")
	if !ok {
		t.Fatalf("now not registered")
	}
	got := fn.Eval(nil)
	dt, e := got.GetDateTime()
	if e.IsError() {
		t.Fatalf("now() = %v", got)
	}
	if !dt.Equal(clock.Now().UTC()) {
		t.Fatalf("now() = %v, want fake clock time %v", dt, clock.Now())
	}

	before := dt
	clock.Advance(time.Hour)
	got = fn.Eval(nil)
	dt, _ = got.GetDateTime()
	if !dt.Equal(before.Add(time.Hour)) {
		t.Fatalf("now() after Advance = %v, want %v", dt, before.Add(time.Hour))
	}

	t.Run("current_date truncates to midnight", func(t *testing.T) {
		fn, _ := bctx.LookupFunction("current_date")
		dt, e := fn.Eval(nil).GetDateTime()
		if e.IsError() {
			t.Fatalf("current_date error: %v", e)
		}
		if dt.Hour() != 0 || dt.Minute() != 0 || dt.Second() != 0 {
			t.Fatalf("current_date = %v, want midnight", dt)
		}
	})
}
