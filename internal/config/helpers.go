package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"
	_ "time/tzdata" // IANA names resolve on hosts without a zoneinfo database
)

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// Location returns the analysis timezone. An empty timezone means UTC.
// Supports formats:
//   - IANA timezone names: "America/Bogota", "Asia/Tokyo", "UTC"
//   - Offset format: "-05:00", "+09:00", "+00:00"
func (c *DatasetConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}

	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc, nil
	}

	loc, err := parseOffsetTimezone(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	return loc, nil
}

// parseOffsetTimezone parses timezone offset format like "+09:00", "-05:00"
func parseOffsetTimezone(offset string) (*time.Location, error) {
	matches := offsetPattern.FindStringSubmatch(offset)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid offset format: %s", offset)
	}

	sign := 1
	if matches[1] == "-" {
		sign = -1
	}

	hours, _ := strconv.Atoi(matches[2])
	minutes, _ := strconv.Atoi(matches[3])
	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("offset out of range: %s", offset)
	}

	return time.FixedZone(offset, sign*(hours*3600+minutes*60)), nil
}
