package dates

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrecision(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{"2020", Of(2020, time.January, 1, PrecisionYear)},
		{" 1998 ", Of(1998, time.January, 1, PrecisionYear)},
		{"2020-06", Of(2020, time.June, 1, PrecisionMonth)},
		{"2020/06", Of(2020, time.June, 1, PrecisionMonth)},
		{"2019-03-15", Of(2019, time.March, 15, PrecisionDay)},
		{"since Juni 2019", Of(2019, time.June, 1, PrecisionDay)},
		{"3rd of Agust 2017", Of(2017, time.August, 3, PrecisionDay)},
		{"started 06/2019 (remote)", Of(2019, time.June, 1, PrecisionDay)},
		{"in march", Of(1900, time.March, 1, PrecisionDay)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseAbsent(t *testing.T) {
	for _, raw := range []string{"", "   ", "present", "Present", " PRESENT ", "ongoing"} {
		got, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.IsZero(), raw)
		assert.Equal(t, PrecisionNone, got.Precision, raw)
	}
}

func TestParseUnparseable(t *testing.T) {
	for _, raw := range []string{"not a date", "2020-13", "sometime"} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrUnparseable, raw)
	}
}

func TestNormalizerRecoversFailures(t *testing.T) {
	var buf bytes.Buffer
	failures := 0
	n := NewNormalizer(
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithFailureHook(func() { failures++ }),
	)

	got := n.Normalize("not a date")
	assert.True(t, got.IsZero())
	assert.Equal(t, 1, failures)
	assert.Contains(t, buf.String(), "date parse failed")

	got = n.Normalize("2021")
	assert.Equal(t, PrecisionYear, got.Precision)
	assert.Equal(t, 1, failures)
}

func TestValueHelpers(t *testing.T) {
	day := Of(2021, time.July, 14, PrecisionDay)
	assert.Equal(t, "14/07/2021", day.Format())
	assert.Equal(t, "07/2021", Value{Date: day.Date, Precision: PrecisionMonth}.Format())
	assert.Equal(t, "2021", Value{Date: day.Date, Precision: PrecisionYear}.Format())
	assert.Equal(t, "", Value{}.Format())

	assert.Equal(t, time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC), Round(day.Date, PrecisionYear))
	assert.Equal(t, time.Date(2021, time.July, 1, 0, 0, 0, 0, time.UTC), Round(day.Date, PrecisionMonth))
	assert.Equal(t, day.Date, Round(day.Date, PrecisionNone))

	assert.True(t, day.Before(Value{}))
	assert.False(t, Value{}.Before(day))
	assert.True(t, Of(2020, time.January, 1, PrecisionYear).Before(day))
}
