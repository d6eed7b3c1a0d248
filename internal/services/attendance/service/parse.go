package service

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"fusepair/internal/core/normalize"
	perr "fusepair/internal/platform/errors"
	"fusepair/internal/services/attendance/domain"
)

// parenField promotes a parenthesized suffix to its own comma field,
// so "Jane Doe (jdoe)" splits into a name cell and an alias cell
var parenField = regexp.MustCompile(`\((.*?)\)`)

// parseRoster reads an RSVP roster: optional BOM, header row skipped,
// cells trimmed, alias in field 2, status in field 4. Rows with fewer than
// four fields reject the whole roster
func parseRoster(r io.Reader) (map[string]domain.Status, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	statuses := map[string]domain.Status{}
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if line == 1 {
			text = strings.TrimPrefix(text, "\uFEFF")
			// header row
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(parenField.ReplaceAllString(text, ", $1"), ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) < 4 {
			return nil, perr.Validationf("roster row %d has %d fields; want at least 4", line, len(fields))
		}
		alias := normalize.Alias(fields[1])
		if alias == "" {
			return nil, perr.Validationf("roster row %d has an empty alias", line)
		}
		statuses[alias] = domain.Classify(fields[3])
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Validationf("roster read: %v", err)
	}
	return statuses, nil
}
