package maillog

import (
	"regexp"
	"time"
)

var (
	// A line must open with either a syslog timestamp ("Oct 22 17:48:40")
	// or an ISO-8601 one ("2024-01-15T10:30:00.123456+02:00").
	timestampRe = regexp.MustCompile(`^(?:(\w{3}\s+\d+\s+\d{2}:\d{2}:\d{2})|([0-9T:.+-]+))\s+`)

	// Syslog header of a Postfix subsystem line.
	headerRe = regexp.MustCompile(`^(\S+)\s+postfix/(\w+)\[(\d+)\]:\s+(.*)$`)

	// Queue ids are runs of 10+ uppercase hex characters at the start of
	// the message.
	queueIDRe = regexp.MustCompile(`^([A-F0-9]{10,})`)
)

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// ParseLine converts one raw log line into a LogLine. It returns nil for
// anything that is not a Postfix mail log line: wrong or missing
// timestamp, non-postfix process, malformed header. It never fails on
// arbitrary input; callers filter the nils.
func ParseLine(line string) *LogLine {
	return ParseLineAt(line, time.Now())
}

// ParseLineAt is ParseLine with an explicit reference clock, used to
// resolve the missing year in syslog timestamps.
func ParseLineAt(line string, now time.Time) *LogLine {
	m := timestampRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	var ts time.Time
	var ok bool
	if m[1] != "" {
		ts, ok = resolveSyslogTime(m[1], now)
	} else {
		ts, ok = resolveISOTime(m[2])
	}
	if !ok {
		return nil
	}

	header := headerRe.FindStringSubmatch(line[len(m[0]):])
	if header == nil {
		return nil
	}

	msg := header[4]
	queueID := ""
	if qm := queueIDRe.FindStringSubmatch(msg); qm != nil {
		queueID = qm[1]
	}

	return &LogLine{
		Timestamp: ts,
		Hostname:  header[1],
		Process:   header[2],
		Message:   msg,
		QueueID:   queueID,
		Raw:       line,
	}
}

// resolveSyslogTime fills in the year a syslog timestamp omits. Months
// after the current one belong to the previous year: a December entry
// read in January came from the log rotated over the year boundary.
func resolveSyslogTime(s string, now time.Time) (time.Time, bool) {
	t, err := time.Parse(time.Stamp, s)
	if err != nil {
		return time.Time{}, false
	}

	year := now.Year()
	if t.Month() > now.Month() {
		year--
	}

	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local), true
}

func resolveISOTime(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
