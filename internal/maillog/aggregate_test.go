package maillog_test

import (
	"reflect"
	"testing"
	"time"

	"mailwatch/internal/maillog"
)

func mkLine(ts time.Time, queueID, message string) *maillog.LogLine {
	return &maillog.LogLine{
		Timestamp: ts,
		Hostname:  "mx1",
		Process:   "smtpd",
		Message:   message,
		QueueID:   queueID,
		Raw:       "raw: " + message,
	}
}

func TestAggregateDeliveryLifecycle(t *testing.T) {
	base := time.Date(2024, time.October, 22, 17, 48, 40, 0, time.UTC)
	lines := []*maillog.LogLine{
		mkLine(base, "ABCDEF0123", "client=mail.example.com[1.2.3.4]"),
		mkLine(base.Add(time.Second), "ABCDEF0123", "from=<alice@example.com> to=<bob@example.org> message-id=<x>"),
		mkLine(base.Add(2*time.Second), "ABCDEF0123", "to=<bob@example.org> status=sent (delivered)"),
	}

	txs := maillog.Aggregate(lines)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}

	tx := txs[0]
	if tx.ID != "ABCDEF0123" {
		t.Errorf("ID = %q", tx.ID)
	}
	if tx.From != "alice@example.com" {
		t.Errorf("From = %q, want alice@example.com", tx.From)
	}
	if tx.To != "bob@example.org" {
		t.Errorf("To = %q, want bob@example.org", tx.To)
	}
	if tx.Status != "sent" {
		t.Errorf("Status = %q, want sent", tx.Status)
	}
	if tx.Detail != "to=<bob@example.org> status=sent (delivered)" {
		t.Errorf("Detail = %q", tx.Detail)
	}
	if !tx.Timestamp.Equal(base.Add(2 * time.Second)) {
		t.Errorf("Timestamp = %v, want status line time", tx.Timestamp)
	}
	if len(tx.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(tx.Lines))
	}
	for i, line := range lines {
		if tx.Lines[i] != line.Raw {
			t.Errorf("Lines[%d] = %q, want %q", i, tx.Lines[i], line.Raw)
		}
	}
}

func TestAggregateDropsTransactionsWithoutAddresses(t *testing.T) {
	ts := time.Now()
	lines := []*maillog.LogLine{
		mkLine(ts, "AAAABBBBCC", "client=mail.example.com[1.2.3.4]"),
		mkLine(ts, "AAAABBBBCC", "warning: hostname does not resolve"),
	}

	if txs := maillog.Aggregate(lines); len(txs) != 0 {
		t.Errorf("got %d transactions, want 0", len(txs))
	}
}

func TestAggregateUnknownDefaultsAndDetailFallback(t *testing.T) {
	ts := time.Now()
	lines := []*maillog.LogLine{
		mkLine(ts, "AAAABBBBCC", "from=<alice@example.com>, size=688, nrcpt=1 (queue active)"),
	}

	txs := maillog.Aggregate(lines)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}

	tx := txs[0]
	if tx.To != maillog.AddrUnknown {
		t.Errorf("To = %q, want %q", tx.To, maillog.AddrUnknown)
	}
	if tx.Status != "info" {
		t.Errorf("Status = %q, want info", tx.Status)
	}
	// No status line: detail falls back to the last raw line.
	if tx.Detail != tx.Lines[len(tx.Lines)-1] {
		t.Errorf("Detail = %q, want last raw line", tx.Detail)
	}
}

func TestAggregateLastStatusWins(t *testing.T) {
	base := time.Now()
	lines := []*maillog.LogLine{
		mkLine(base, "AAAABBBBCC", "to=<bob@example.org> status=sent (ok)"),
		mkLine(base.Add(time.Minute), "AAAABBBBCC", "to=<bob@example.org> status=deferred (timeout)"),
	}

	txs := maillog.Aggregate(lines)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].Status != "deferred" {
		t.Errorf("Status = %q, want deferred (no status priority, last write wins)", txs[0].Status)
	}
	if !txs[0].Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("Timestamp not updated to latest status line")
	}
}

func TestAggregateSortsMostRecentFirst(t *testing.T) {
	base := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	lines := []*maillog.LogLine{
		mkLine(base, "AAAAAAAAAA", "from=<old@example.com> status=sent (ok)"),
		mkLine(base.Add(time.Hour), "BBBBBBBBBB", "from=<new@example.com> status=sent (ok)"),
	}

	txs := maillog.Aggregate(lines)
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if txs[0].ID != "BBBBBBBBBB" || txs[1].ID != "AAAAAAAAAA" {
		t.Errorf("order = [%s %s], want newest first", txs[0].ID, txs[1].ID)
	}
}

func TestAggregateSkipsLinesWithoutQueueID(t *testing.T) {
	ts := time.Now()
	lines := []*maillog.LogLine{
		mkLine(ts, "", "connect from unknown[5.6.7.8]"),
		mkLine(ts, "", "daemon started -- version 3.7.6"),
		nil,
		mkLine(ts, "AAAABBBBCC", "from=<alice@example.com>"),
	}

	txs := maillog.Aggregate(lines)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if len(txs[0].Lines) != 1 {
		t.Errorf("unattributed lines leaked into the transaction")
	}
}

func TestAggregateIdempotent(t *testing.T) {
	base := time.Now()
	lines := []*maillog.LogLine{
		mkLine(base, "AAAABBBBCC", "from=<alice@example.com>"),
		mkLine(base.Add(time.Second), "AAAABBBBCC", "to=<bob@example.org> status=bounced (550)"),
		mkLine(base.Add(2*time.Second), "DDDDEEEEFF", "from=<carol@example.net> status=sent (ok)"),
	}

	first := maillog.Aggregate(lines)
	second := maillog.Aggregate(lines)
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over the same input differ")
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	if txs := maillog.Aggregate(nil); len(txs) != 0 {
		t.Errorf("got %d transactions for empty input, want 0", len(txs))
	}
}
