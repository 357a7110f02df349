// Package timespan parses the human-friendly time-span strings accepted in
// configuration, e.g. the notification window "2 days".
package timespan

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// InvalidFormatError indicates that a string matched none of the accepted
// time-span grammars.
type InvalidFormatError struct {
	Input string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("not a valid time span: %q", e.Input)
}

// IsInvalidFormat reports whether err (or any error in its chain) is an
// InvalidFormatError.
func IsInvalidFormat(err error) bool {
	var invalidErr *InvalidFormatError
	return errors.As(err, &invalidErr)
}

const (
	daysPattern = `(?P<days>\d+)\s+day(s)?`
	hmsPattern  = `(?P<hours>\d?\d):(?P<minutes>\d\d):(?P<seconds>\d\d)`
	msPattern   = `\.(?P<milliseconds>\d\d\d)(?P<microseconds>\d\d\d)`
)

// patterns are the accepted grammars, tried in this fixed order. Order
// matters: the grammars overlap, and a days-only string must not be
// attempted against the hours:minutes:seconds pattern.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^` + daysPattern + `$`),
	regexp.MustCompile(`^` + hmsPattern + `$`),
	regexp.MustCompile(`^` + msPattern + `$`),
	regexp.MustCompile(`^` + hmsPattern + msPattern + `$`),
	regexp.MustCompile(`^` + daysPattern + `,\s+` + hmsPattern + `$`),
	regexp.MustCompile(`^` + daysPattern + `,\s+` + hmsPattern + msPattern + `$`),
}

// Parse converts a time-span string into a time.Duration.
//
// Accepted formats:
//
//	2 days
//	14 days
//	4:35:00 (hours, minutes and seconds)
//	4:35:12.087465 (hours, minutes, seconds and microseconds)
//	7 days, 3:23:34
//	7 days, 3:23:34.087465
//	.087465 (milliseconds and microseconds only)
//
// Components not present in the matched format default to zero. Strings
// matching none of the formats yield an InvalidFormatError.
func Parse(s string) (time.Duration, error) {
	var match []string
	var names []string

	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(s); m != nil {
			match = m
			names = pattern.SubexpNames()
			break
		}
	}

	if match == nil {
		return 0, &InvalidFormatError{Input: s}
	}

	fields := make(map[string]int)
	for i, name := range names {
		if name == "" || match[i] == "" {
			continue
		}
		// Groups only capture digit runs, so this cannot fail.
		n, _ := strconv.Atoi(match[i])
		fields[name] = n
	}

	d := time.Duration(fields["days"])*24*time.Hour +
		time.Duration(fields["hours"])*time.Hour +
		time.Duration(fields["minutes"])*time.Minute +
		time.Duration(fields["seconds"])*time.Second +
		time.Duration(fields["milliseconds"])*time.Millisecond +
		time.Duration(fields["microseconds"])*time.Microsecond

	return d, nil
}
