package helpers

import (
	"strings"
	"time"
	_ "time/tzdata"
)

var accra = loadAccra()

func loadAccra() *time.Location {
	loc, err := time.LoadLocation("Africa/Accra")
	if err != nil {
		return time.FixedZone("GMT", 0)
	}
	return loc
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatAccraTime renders a store timestamp as a 24h "15:04" clock time in
// Africa/Accra. Unparsable input is returned unchanged.
func FormatAccraTime(raw string) string {
	t, ok := parseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.In(accra).Format("15:04")
}

// FormatAccraDate renders a date or timestamp as "Jan 2, 2006" in Africa/Accra.
func FormatAccraDate(raw string) string {
	t, ok := parseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.In(accra).Format("Jan 2, 2006")
}

// FormatTimeRange joins two slot boundaries as "HH:MM - HH:MM".
func FormatTimeRange(start, end string) string {
	return FormatAccraTime(start) + " - " + FormatAccraTime(end)
}
