package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// dmyPattern matches DD/MM/YYYY and DD-MM-YYYY with one or two digit day and month.
var dmyPattern = regexp.MustCompile(`^(\d{1,2})([/-])(\d{1,2})([/-])(\d{4})$`)

// NormalizeDate parses a day-first statement date, or an ISO date, into
// midnight UTC. Anything else is an error.
func NormalizeDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if m := dmyPattern.FindStringSubmatch(s); m != nil && m[2] == m[4] {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[3])
		year, _ := strconv.Atoi(m[5])
		return calendarDate(raw, year, month, day)
	}
	if t, err := time.Parse(isoDate, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func calendarDate(raw string, year, month, day int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid calendar date %q", raw)
	}
	return t, nil
}
