package timespan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"2 days", 48 * time.Hour},
		{"1 day", 24 * time.Hour},
		{"14 days", 14 * 24 * time.Hour},
		{"4:35:00", 4*time.Hour + 35*time.Minute},
		{"04:35:00", 4*time.Hour + 35*time.Minute},
		{
			"4:35:12.087465",
			4*time.Hour + 35*time.Minute + 12*time.Second +
				87*time.Millisecond + 465*time.Microsecond,
		},
		{
			"7 days, 3:23:34",
			7*24*time.Hour + 3*time.Hour + 23*time.Minute + 34*time.Second,
		},
		{
			"7 days, 3:23:34.087465",
			7*24*time.Hour + 3*time.Hour + 23*time.Minute + 34*time.Second +
				87*time.Millisecond + 465*time.Microsecond,
		},
		{".087465", 87*time.Millisecond + 465*time.Microsecond},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	inputs := []string{
		"",
		"abc",
		"2",
		"2 day(s)",
		"2days",
		"4:5:00",     // minutes must be two digits
		"4:35",       // seconds missing
		"4:35:00 ",   // trailing garbage
		" 4:35:00",   // leading garbage
		"123:35:00",  // hours limited to two digits
		".0874",      // too few fractional digits
		".08746512",  // too many fractional digits
		"0874655",    // no leading dot
		"7 days 3:23:34", // comma separator required
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			assert.True(t, IsInvalidFormat(err))
		})
	}
}

func TestParseFieldsDefaultToZero(t *testing.T) {
	got, err := Parse("0:00:05")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, got)
}
