// Package when converts deferred-send time expressions into absolute times.
//
// Accepted inputs are time.Time, epoch seconds (any integer type), time.Duration
// (relative to now) and strings. Strings may be absolute layouts
// ("2024-01-08", RFC 3339), "@<epoch>", Go durations ("90m") or English
// expressions understood by github.com/olebedev/when plus calendar offsets:
//
//	tomorrow 9am, next friday, in 2 weeks, 3 hours ago
//	next week, last month, +2 days, -1 year
//
// The expression must be consumed entirely; "tomorrow banana" is rejected.
package when

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	nl "github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrInvalid is returned when the input does not resolve to a point in time.
var ErrInvalid = errors.New("when: invalid time expression")

var absoluteLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Parse resolves v against now. The location of now is used for
// calendar arithmetic and for layouts without a zone.
func Parse(v any, now time.Time) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, fmt.Errorf("%w: zero time", ErrInvalid)
		}
		return t, nil
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, fmt.Errorf("%w: zero time", ErrInvalid)
		}
		return *t, nil
	case time.Duration:
		return now.Add(t), nil
	case int:
		return fromEpoch(int64(t))
	case int32:
		return fromEpoch(int64(t))
	case int64:
		return fromEpoch(t)
	case uint:
		return fromEpoch(int64(t))
	case uint32:
		return fromEpoch(int64(t))
	case uint64:
		return fromEpoch(int64(t))
	case string:
		return parseString(t, now)
	case fmt.Stringer:
		return parseString(t.String(), now)
	case nil:
		return time.Time{}, fmt.Errorf("%w: nil", ErrInvalid)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalid, v)
	}
}

func fromEpoch(sec int64) (time.Time, error) {
	if sec <= 0 {
		return time.Time{}, fmt.Errorf("%w: non-positive epoch %d", ErrInvalid, sec)
	}
	return time.Unix(sec, 0).UTC(), nil
}

func parseString(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty expression", ErrInvalid)
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}

	if epoch, ok := strings.CutPrefix(s, "@"); ok {
		sec, err := strconv.ParseInt(epoch, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		return fromEpoch(sec)
	}

	if !strings.ContainsRune(s, ' ') {
		if d, err := time.ParseDuration(s); err == nil {
			return now.Add(d), nil
		}
	}

	r, err := parser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	if strings.TrimSpace(s[:r.Index]) != "" || strings.TrimSpace(s[r.Index+len(r.Text):]) != "" {
		return time.Time{}, fmt.Errorf("%w: %q: unrecognized text around %q", ErrInvalid, s, r.Text)
	}
	return r.Time, nil
}

var parser = newParser()

func newParser() *nl.Parser {
	p := nl.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	p.Add(calendarOffset())
	return p
}

var offsetPattern = regexp.MustCompile(`(?i)(?:^|\s)(?:(next|last|previous)\s+|([+-]\d+)\s*)(second|minute|hour|day|week|fortnight|month|year)s?\b`)

// calendarOffset handles "next week", "last month" and signed offsets such
// as "+2 days". Months and years follow the calendar, so the offset is
// measured from ref.
func calendarOffset() rules.Rule {
	return &rules.F{
		RegExp: offsetPattern,
		Applier: func(m *rules.Match, c *rules.Context, _ *rules.Options, ref time.Time) (bool, error) {
			n := 1
			switch strings.ToLower(m.Captures[0]) {
			case "last", "previous":
				n = -1
			case "":
				v, err := strconv.Atoi(strings.TrimPrefix(m.Captures[1], "+"))
				if err != nil {
					return false, err
				}
				n = v
			}

			var target time.Time
			switch strings.ToLower(m.Captures[2]) {
			case "second":
				target = ref.Add(time.Duration(n) * time.Second)
			case "minute":
				target = ref.Add(time.Duration(n) * time.Minute)
			case "hour":
				target = ref.Add(time.Duration(n) * time.Hour)
			case "day":
				target = ref.AddDate(0, 0, n)
			case "week":
				target = ref.AddDate(0, 0, 7*n)
			case "fortnight":
				target = ref.AddDate(0, 0, 14*n)
			case "month":
				target = ref.AddDate(0, n, 0)
			case "year":
				target = ref.AddDate(n, 0, 0)
			default:
				return false, nil
			}
			c.Duration += target.Sub(ref)
			return true, nil
		},
	}
}
