package dates

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrUnparseable is returned by Parse when no date can be recovered.
var ErrUnparseable = errors.New("unparseable date")

// defaultYear fills in a missing year, matching the 1900-01-01 default date.
const defaultYear = 1900

var (
	yearOnly  = regexp.MustCompile(`^\d{4}$`)
	yearMonth = regexp.MustCompile(`^(\d{4})[-/](\d{2})$`)
	ordinal   = regexp.MustCompile(`^(\d{1,2})(st|nd|rd|th)$`)
)

// ongoing lists expressions that mean "no end yet". They normalize to an
// absent value; callers decide between "ongoing" and "unknown".
var ongoing = map[string]struct{}{
	"present": {},
	"current": {},
	"now":     {},
	"today":   {},
	"ongoing": {},
}

// Parse normalizes raw into a Value. Empty input and "present" yield the zero
// Value and a nil error; input that cannot be read as a date yields
// ErrUnparseable.
func Parse(raw string) (Value, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Value{}, nil
	}
	if _, ok := ongoing[s]; ok {
		return Value{}, nil
	}

	if yearOnly.MatchString(s) {
		y, _ := strconv.Atoi(s)
		return Of(y, time.January, 1, PrecisionYear), nil
	}
	if m := yearMonth.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		mon, _ := strconv.Atoi(m[2])
		if mon < 1 || mon > 12 {
			return Value{}, fmt.Errorf("%w: month %d out of range in %q", ErrUnparseable, mon, raw)
		}
		return Of(y, time.Month(mon), 1, PrecisionMonth), nil
	}

	t, err := fuzzy(s)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q", ErrUnparseable, raw)
	}
	return FromTime(t, PrecisionDay), nil
}

// Normalizer wraps Parse with the recovery policy: failures are logged and
// reported to OnFailure, and the field is treated as absent.
type Normalizer struct {
	logger    *slog.Logger
	onFailure func()
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithLogger sets the logger used for parse failures.
func WithLogger(logger *slog.Logger) NormalizerOption {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithFailureHook registers a callback invoked once per parse failure.
func WithFailureHook(fn func()) NormalizerOption {
	return func(n *Normalizer) {
		n.onFailure = fn
	}
}

// NewNormalizer builds a Normalizer. Without options it logs to slog.Default.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{logger: slog.Default()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize never fails: unparseable input is logged and comes back absent.
func (n *Normalizer) Normalize(raw string) Value {
	v, err := Parse(raw)
	if err != nil {
		if n != nil {
			n.logger.Warn("date parse failed", "raw", raw, "error", err)
			if n.onFailure != nil {
				n.onFailure()
			}
		}
		return Value{}
	}
	return v
}

// fuzzy tries the library parser on the input as given, then picks day,
// month and year tokens out of the cleaned-up text, and finally hands the
// cleaned-up text back to the library parser.
func fuzzy(s string) (t time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("date parser panic: %v", r)
		}
	}()

	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t, nil
	}
	tokens := tokenize(s)
	if len(tokens) == 0 {
		return time.Time{}, ErrUnparseable
	}
	if t, err := fromTokens(tokens); err == nil {
		return t, nil
	}
	return dateparse.ParseIn(strings.Join(tokens, " "), time.UTC)
}

// tokenize lower-cases and splits s, corrects month typos, strips ordinal
// suffixes and drops words that carry no date information.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '(' || r == ')' || r == ';' || r == ':'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f == "" {
			continue
		}
		if m := ordinal.FindStringSubmatch(f); m != nil {
			f = m[1]
		}
		if mon, ok := monthByName(f); ok {
			out = append(out, monthNames[mon-1])
			continue
		}
		if isDateish(f) {
			out = append(out, f)
		}
	}
	return out
}

func isDateish(f string) bool {
	for _, r := range f {
		if (r < '0' || r > '9') && r != '/' && r != '-' && r != '.' {
			return false
		}
	}
	return true
}

// fromTokens assembles a date from loose tokens. At least a year or a month
// name must be present; missing parts come from the 1900-01-01 default.
func fromTokens(tokens []string) (time.Time, error) {
	year, month, day := 0, time.Month(0), 0
	for _, tok := range tokens {
		if mon, ok := monthByName(tok); ok {
			if month == 0 {
				month = mon
			}
			continue
		}
		if y, m, d, ok := numericDate(tok); ok {
			if year == 0 {
				year, month, day = y, m, d
			}
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		switch {
		case len(tok) == 4 && year == 0:
			year = n
		case len(tok) <= 2 && n >= 1 && n <= 31 && day == 0:
			day = n
		}
	}
	if year == 0 && month == 0 {
		return time.Time{}, ErrUnparseable
	}
	if year == 0 {
		year = defaultYear
	}
	if month == 0 {
		month = time.January
	}
	if day == 0 {
		day = 1
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, ErrUnparseable
	}
	return t, nil
}

// numericDate reads separated numeric dates such as 06/2019, 2019.06,
// 15/03/2019 or 2019-03-15. Ambiguous day/month order is read month first
// unless the first part cannot be a month. A zero day means "not given".
func numericDate(tok string) (int, time.Month, int, bool) {
	parts := strings.FieldsFunc(tok, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, false
		}
		nums[i] = n
	}

	var y, m, d int
	switch {
	case len(parts) == 2 && len(parts[0]) == 4:
		y, m = nums[0], nums[1]
	case len(parts) == 2 && len(parts[1]) == 4:
		y, m = nums[1], nums[0]
	case len(parts) == 3 && len(parts[0]) == 4:
		y, m, d = nums[0], nums[1], nums[2]
	case len(parts) == 3 && len(parts[2]) == 4:
		y, m, d = nums[2], nums[0], nums[1]
		if m > 12 {
			m, d = d, m
		}
	default:
		return 0, 0, 0, false
	}
	if m < 1 || m > 12 || d < 0 || d > 31 {
		return 0, 0, 0, false
	}
	return y, time.Month(m), d, true
}
