// Package zid suggests timestamp-shaped note identifiers.
package zid

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"github.com/araddon/dateparse"
)

// Timestamp layout of a full 14-digit identifier.
const layout = "20060102150405"

var (
	digitsOnly  = regexp.MustCompile(`^\d+$`)
	datePrefix  = regexp.MustCompile(`^([12]\d{3}\d*)[ x]`)
	leadingDate = regexp.MustCompile(`^[12]\d{3}[x\d]* `)
	randFn      = rand.Intn
)

// Suggest completes a digit-run date prefix into a full 14-digit
// identifier, randomizing the positions the prefix leaves open. A full
// timestamp gets a fresh seconds part.
func Suggest(date string) (string, error) {
	switch len(date) {
	case 4:
		// Add month, day, hour, minute, second.
		return date + "0101" + random(23) + random(59) + random(59), nil
	case 6:
		// Add day, hour, minute, second.
		return date + "01" + random(23) + random(59) + random(59), nil
	case 8:
		// Add hour, minute, second.
		return date + random(23) + random(59) + random(59), nil
	case 10:
		// Add minute, second.
		return date + random(59) + random(59), nil
	case 12:
		// Add second.
		return date + random(59), nil
	case 14:
		// Replace seconds.
		return date[:12] + random(59), nil
	default:
		return "", fmt.Errorf("unknown date format: %s", date)
	}
}

// SuggestForDay expands a day-precision prefix (YYYY, YYYYMM, or
// YYYYMMDD) into an identifier at a random second within that day.
func SuggestForDay(date string) (string, error) {
	switch len(date) {
	case 4:
		date += "0101"
	case 6:
		date += "01"
	}

	if len(date) != 8 {
		return "", fmt.Errorf("unknown date format: %s", date)
	}

	ts, err := time.ParseInLocation("20060102", date, time.Local)
	if err != nil {
		return "", fmt.Errorf("unknown date format: %s", date)
	}

	return ts.Add(time.Duration(randFn(86400)) * time.Second).Format(layout), nil
}

// Normalize turns a date argument into the digit-run prefix Suggest
// accepts. Digit runs pass through unchanged; anything else is parsed
// as a date in the local timezone and rendered at minute precision.
func Normalize(date string) (string, error) {
	if digitsOnly.MatchString(date) {
		return date, nil
	}

	ts, err := dateparse.ParseLocal(date)
	if err != nil {
		return "", fmt.Errorf("unrecognized date %q: %w", date, err)
	}
	return ts.Format("200601021504"), nil
}

// Now returns the minute-precision prefix for the current time.
func Now() string {
	return time.Now().Format("200601021504")
}

// DateFromFilename extracts a leading year-anchored digit run from a
// file name, e.g. "202101 Planning.md" yields "202101".
func DateFromFilename(name string) string {
	match := datePrefix.FindStringSubmatch(name)
	if match == nil {
		return ""
	}
	return match[1]
}

// StripDatePrefix removes a leading date string from a title. Dates
// may pad unknown positions with "x", e.g. "2021xxxx".
func StripDatePrefix(title string) string {
	return leadingDate.ReplaceAllString(title, "")
}

func random(max int) string {
	return fmt.Sprintf("%02d", randFn(max+1))
}
