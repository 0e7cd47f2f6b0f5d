package rowflow

import (
	"strings"
	"time"

	"github.com/zoobzio/clockz"
)

// registerDateTimeFunctions registers the date/time built-ins. Functions
// that read wall-clock time (now, current_date, current_timestamp,
// zero-argument unix_timestamp) call getClock at eval time rather than
// capturing a clock once: BuildContext.WithClock can swap the clock after
// the function table is built, and tests inject clockz.NewFakeClock for
// deterministic output.
func registerDateTimeFunctions(r *Registry, getClock func() clockz.Clock) {
	if getClock == nil {
		getClock = func() clockz.Clock { return clockz.RealClock }
	}

	r.MustRegister("now", func() Function {
		return simpleFn{minArgs: 0, maxArgs: 0, out: fixedOut(TypeDateTime), eval: func([]Value) Value {
			return NewDateTime(getClock().Now())
		}}
	})
	r.MustRegister("current_timestamp", func() Function {
		return simpleFn{minArgs: 0, maxArgs: 0, out: fixedOut(TypeDateTime), eval: func([]Value) Value {
			return NewDateTime(getClock().Now())
		}}
	})
	r.MustRegister("current_date", func() Function {
		return simpleFn{minArgs: 0, maxArgs: 0, out: fixedOut(TypeDateTime), eval: func([]Value) Value {
			now := getClock().Now().UTC()
			return NewDateTime(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
		}}
	})

	r.MustRegister("year", dtField(func(t time.Time) int64 { return int64(t.Year()) }))
	r.MustRegister("quarter", dtField(func(t time.Time) int64 { return int64((int(t.Month())-1)/3 + 1) }))
	r.MustRegister("month", dtField(func(t time.Time) int64 { return int64(t.Month()) }))
	r.MustRegister("day", dtField(func(t time.Time) int64 { return int64(t.Day()) }))
	r.MustRegister("dayofmonth", dtField(func(t time.Time) int64 { return int64(t.Day()) }))
	r.MustRegister("dayofyear", dtField(func(t time.Time) int64 { return int64(t.YearDay()) }))
	r.MustRegister("dayofweek", dtField(func(t time.Time) int64 { return int64(t.Weekday()) + 1 }))
	r.MustRegister("weekday", dtField(func(t time.Time) int64 { return int64((int(t.Weekday()) + 6) % 7) }))
	r.MustRegister("weekofyear", dtField(func(t time.Time) int64 {
		_, wk := t.ISOWeek()
		return int64(wk)
	}))
	r.MustRegister("hour", dtField(func(t time.Time) int64 { return int64(t.Hour()) }))
	r.MustRegister("minute", dtField(func(t time.Time) int64 { return int64(t.Minute()) }))
	r.MustRegister("second", dtField(func(t time.Time) int64 { return int64(t.Second()) }))

	r.MustRegister("last_day", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
			return NewDateTime(firstOfNext.Add(-24 * time.Hour))
		}}
	})
	r.MustRegister("next_day", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			name, e2 := args[1].GetString()
			if e2.IsError() {
				return e2
			}
			target, ok := weekdayNames[strings.ToLower(name)]
			if !ok {
				return NewError(ErrInvalidValue, "unknown weekday %q", name)
			}
			diff := (int(target) - int(t.Weekday()) + 7) % 7
			if diff == 0 {
				diff = 7
			}
			return NewDateTime(t.AddDate(0, 0, diff))
		}}
	})
	r.MustRegister("add_months", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			n, e2 := args[1].GetLong()
			if e2.IsError() {
				return e2
			}
			return NewDateTime(t.AddDate(0, int(n), 0))
		}}
	})
	r.MustRegister("add_days", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			n, e2 := args[1].GetLong()
			if e2.IsError() {
				return e2
			}
			return NewDateTime(t.AddDate(0, 0, int(n)))
		}}
	})
	r.MustRegister("date_add", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			n, e2 := args[1].GetLong()
			if e2.IsError() {
				return e2
			}
			return NewDateTime(t.AddDate(0, 0, int(n)))
		}}
	})
	r.MustRegister("date_sub", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			n, e2 := args[1].GetLong()
			if e2.IsError() {
				return e2
			}
			return NewDateTime(t.AddDate(0, 0, -int(n)))
		}}
	})
	r.MustRegister("date_diff", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			a, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			b, e2 := args[1].GetDateTime()
			if e2.IsError() {
				return e2
			}
			return NewLong(int64(a.Sub(b).Hours() / 24))
		}}
	})
	r.MustRegister("date_from_unix_date", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			days, e := args[0].GetLong()
			if e.IsError() {
				return e
			}
			return NewDateTime(time.Unix(days*86400, 0).UTC())
		}}
	})
	r.MustRegister("make_date", func() Function {
		return simpleFn{minArgs: 3, maxArgs: 3, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			y, e := args[0].GetLong()
			if e.IsError() {
				return e
			}
			m, e2 := args[1].GetLong()
			if e2.IsError() {
				return e2
			}
			d, e3 := args[2].GetLong()
			if e3.IsError() {
				return e3
			}
			return NewDateTime(time.Date(int(y), time.Month(m), int(d), 0, 0, 0, 0, time.UTC))
		}}
	})
	r.MustRegister("make_timestamp", func() Function {
		return simpleFn{minArgs: 6, maxArgs: 6, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			parts := make([]int64, 6)
			for i, a := range args {
				v, e := a.GetLong()
				if e.IsError() {
					return e
				}
				parts[i] = v
			}
			return NewDateTime(time.Date(int(parts[0]), time.Month(parts[1]), int(parts[2]), int(parts[3]), int(parts[4]), int(parts[5]), 0, time.UTC))
		}}
	})
	r.MustRegister("to_timestamp", parseTimestampFn())
	r.MustRegister("timestamp", parseTimestampFn())

	r.MustRegister("unix_date", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			return NewLong(t.Unix() / 86400)
		}}
	})
	r.MustRegister("unix_timestamp", func() Function {
		return simpleFn{minArgs: 0, maxArgs: 1, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			if len(args) == 0 {
				return NewLong(getClock().Now().Unix())
			}
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			return NewLong(t.Unix())
		}}
	})
	r.MustRegister("to_unix_timestamp", func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			return NewLong(t.Unix())
		}}
	})
	r.MustRegister("unix_seconds", unixScale(1))
	r.MustRegister("unix_millis", unixScale(1000))
	r.MustRegister("unix_micros", unixScale(1000000))
	r.MustRegister("timestamp_seconds", fromUnixScale(1))
	r.MustRegister("timestamp_millis", fromUnixScale(1000))
	r.MustRegister("timestamp_micros", fromUnixScale(1000000))

	r.MustRegister("from_utc_timestamp", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			loc, e2 := timezoneArg(args[1])
			if e2.IsError() {
				return e2
			}
			// Re-express the UTC instant as the zone's wall-clock time.
			w := t.In(loc)
			return NewDateTime(time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), time.UTC))
		}}
	})
	r.MustRegister("to_utc_timestamp", func() Function {
		return simpleFn{minArgs: 2, maxArgs: 2, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			loc, e2 := timezoneArg(args[1])
			if e2.IsError() {
				return e2
			}
			// Reinterpret the wall-clock fields as zone-local time.
			return NewDateTime(time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc))
		}}
	})
}

func timezoneArg(v Value) (*time.Location, Value) {
	name, e := v.GetString()
	if e.IsError() {
		return nil, e
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, NewError(ErrInvalidValue, "unknown time zone %q", name)
	}
	return loc, Value{}
}

func dtField(f func(time.Time) int64) FuncBuilder {
	return func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			return NewLong(f(t))
		}}
	}
}

func unixScale(scale int64) FuncBuilder {
	return func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeLong), eval: func(args []Value) Value {
			t, e := args[0].GetDateTime()
			if e.IsError() {
				return e
			}
			switch scale {
			case 1:
				return NewLong(t.Unix())
			default:
				return NewLong(t.Unix()*scale + int64(t.Nanosecond())/(1000000000/scale))
			}
		}}
	}
}

func fromUnixScale(scale int64) FuncBuilder {
	return func() Function {
		return simpleFn{minArgs: 1, maxArgs: 1, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			n, e := args[0].GetLong()
			if e.IsError() {
				return e
			}
			sec := n / scale
			frac := n % scale
			nsec := frac * (1000000000 / scale)
			return NewDateTime(time.Unix(sec, nsec).UTC())
		}}
	}
}

func parseTimestampFn() FuncBuilder {
	return func() Function {
		return simpleFn{minArgs: 1, maxArgs: 2, out: fixedOut(TypeDateTime), eval: func(args []Value) Value {
			if args[0].typ == TypeDateTime {
				return args[0]
			}
			s, e := args[0].GetString()
			if e.IsError() {
				return e
			}
			format := DefaultTimestampFormat
			if len(args) == 2 {
				f, e2 := args[1].GetString()
				if e2.IsError() {
					return e2
				}
				format = f
			}
			t, err := time.Parse(format, s)
			if err != nil {
				return NewError(ErrFormatError, "cannot parse %q as timestamp: %v", s, err)
			}
			return NewDateTime(t)
		}}
	}
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

