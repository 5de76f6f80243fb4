package shell

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var regionTitler = cases.Title(language.Und)

// SplitCodes splits comma-separated free-text country codes, trimming and
// uppercasing each so lowercase input still matches the cleaned data.
func SplitCodes(input string) []string {
	parts := strings.Split(input, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		code := strings.ToUpper(strings.TrimSpace(p))
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// partitionCodes splits codes into those present in known and the rest.
func partitionCodes(codes, known []string) (valid, invalid []string) {
	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}
	for _, code := range codes {
		if knownSet[code] {
			valid = append(valid, code)
		} else {
			invalid = append(invalid, code)
		}
	}
	return valid, invalid
}

// ParseIntInput parses a free-text integer.
func ParseIntInput(input string) (*int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return nil, fmt.Errorf("%q is not a whole number", input)
	}
	return &n, nil
}

// ParseYearInput parses a free-text year.
func ParseYearInput(input string) (*int, error) {
	year, err := ParseIntInput(input)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid year", input)
	}
	return year, nil
}

// ParseCoverageInput parses a free-text coverage percentage.
func ParseCoverageInput(input string) (*float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid coverage rate", input)
	}
	return &v, nil
}

// TitleRegion normalizes a free-text region name to the title-cased form
// the cleaner stores.
func TitleRegion(input string) string {
	return regionTitler.String(strings.TrimSpace(input))
}
