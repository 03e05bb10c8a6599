package maillog

import "time"

// Sentinels used when a retained transaction is missing a field.
const (
	AddrUnknown = "N/A"
	NoDetail    = "No details available."
)

// LogLine is one parsed line of a Postfix system log. It is ephemeral:
// produced by ParseLine, consumed by Aggregate, then discarded.
type LogLine struct {
	// Timestamp is the moment the line was emitted.
	Timestamp time.Time

	// Hostname of the emitting machine.
	Hostname string

	// Process is the Postfix subsystem (smtpd, qmgr, smtp, cleanup, ...).
	Process string

	// Message is everything after the syslog header.
	Message string

	// QueueID is the Postfix queue identifier when the message starts
	// with one, otherwise empty. Daemon start/stop lines and connection
	// lines have no queue id.
	QueueID string

	// Raw is the original line, kept for the detail view.
	Raw string
}

// Transaction is the aggregated lifecycle of one mail delivery, keyed by
// queue id. Mutated in place during one Aggregate pass, immutable after.
//
// Postfix logs one to=<...> line per recipient attempt under the same
// queue id; the fold is last-write-wins, so multi-recipient deliveries
// report only the final recipient. Known limitation.
type Transaction struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail"`
	Lines     []string  `json:"lines"`
}
