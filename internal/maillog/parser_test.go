package maillog_test

import (
	"testing"
	"time"

	"mailwatch/internal/maillog"
)

func TestParseLineSyslogFormat(t *testing.T) {
	now := time.Date(2024, time.October, 25, 12, 0, 0, 0, time.Local)
	line := "Oct 22 17:48:40 mail01 postfix/smtpd[183177]: 3B838E03CA11: client=localhost[127.0.0.1]"

	got := maillog.ParseLineAt(line, now)
	if got == nil {
		t.Fatal("ParseLineAt returned nil for a valid line")
	}

	want := time.Date(2024, time.October, 22, 17, 48, 40, 0, time.Local)
	if !got.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, want)
	}
	if got.Hostname != "mail01" {
		t.Errorf("Hostname = %q, want %q", got.Hostname, "mail01")
	}
	if got.Process != "smtpd" {
		t.Errorf("Process = %q, want %q", got.Process, "smtpd")
	}
	if got.QueueID != "3B838E03CA11" {
		t.Errorf("QueueID = %q, want %q", got.QueueID, "3B838E03CA11")
	}
	if got.Message != "3B838E03CA11: client=localhost[127.0.0.1]" {
		t.Errorf("Message = %q", got.Message)
	}
	if got.Raw != line {
		t.Errorf("Raw = %q, want original line", got.Raw)
	}
}

func TestParseLineISOFormat(t *testing.T) {
	line := "2024-01-15T10:30:00.123456+02:00 mx1 postfix/qmgr[99]: ABCDEF012345: from=<a@b.com>, size=688"

	got := maillog.ParseLine(line)
	if got == nil {
		t.Fatal("ParseLine returned nil for a valid ISO line")
	}

	want := time.Date(2024, time.January, 15, 10, 30, 0, 123456000, time.FixedZone("", 2*3600))
	if !got.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, want)
	}
	if got.QueueID != "ABCDEF012345" {
		t.Errorf("QueueID = %q, want %q", got.QueueID, "ABCDEF012345")
	}
}

func TestParseLineYearInference(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		now      time.Time
		wantYear int
	}{
		{
			name:     "december entry read in january",
			line:     "Dec 31 23:59:59 mx1 postfix/smtp[1]: ABCDEF012345: status=sent (ok)",
			now:      time.Date(2024, time.January, 2, 0, 0, 0, 0, time.Local),
			wantYear: 2023,
		},
		{
			name:     "january entry read in january",
			line:     "Jan 1 00:00:01 mx1 postfix/smtp[1]: ABCDEF012345: status=sent (ok)",
			now:      time.Date(2024, time.January, 2, 0, 0, 0, 0, time.Local),
			wantYear: 2024,
		},
		{
			name:     "same month earlier day",
			line:     "Jun 3 08:00:00 mx1 postfix/smtp[1]: ABCDEF012345: status=sent (ok)",
			now:      time.Date(2024, time.June, 20, 0, 0, 0, 0, time.Local),
			wantYear: 2024,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := maillog.ParseLineAt(tt.line, tt.now)
			if got == nil {
				t.Fatal("ParseLineAt returned nil")
			}
			if got.Timestamp.Year() != tt.wantYear {
				t.Errorf("year = %d, want %d", got.Timestamp.Year(), tt.wantYear)
			}
		})
	}
}

func TestParseLineQueueID(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"ten hex chars", "4A2B3C4D5E: from=<x@y.com>", "4A2B3C4D5E"},
		{"longer id", "3B838E03CA99: removed", "3B838E03CA99"},
		{"too short", "4A2B3C4D5: removed", ""},
		{"lowercase hex", "4a2b3c4d5e99: removed", ""},
		{"non hex", "connect from unknown[1.2.3.4]", ""},
		{"daemon line", "daemon started -- version 3.7.6", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := "Oct 22 17:48:40 mx1 postfix/smtpd[5]: " + tt.message
			got := maillog.ParseLine(line)
			if got == nil {
				t.Fatal("ParseLine returned nil")
			}
			if got.QueueID != tt.want {
				t.Errorf("QueueID = %q, want %q", got.QueueID, tt.want)
			}
		})
	}
}

func TestParseLineRejectsGarbage(t *testing.T) {
	lines := []string{
		"",
		"not a log line at all",
		"Oct 22 17:48:40 mx1 dovecot[12]: imap login",
		"Oct 22 17:48:40 mx1 postfix/smtpd: missing pid",
		"Foo 99 99:99:99 mx1 postfix/smtpd[5]: bad month",
		"99999 some trailing text",
		"Oct 22 17:48:40",
		"\x00\xff binary junk \x17",
	}

	for _, line := range lines {
		if got := maillog.ParseLine(line); got != nil {
			t.Errorf("ParseLine(%q) = %+v, want nil", line, got)
		}
	}
}
