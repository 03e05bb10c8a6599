package maillog

import (
	"regexp"
	"sort"
	"strings"
)

var (
	fromRe   = regexp.MustCompile(`from=<([^>]+)>`)
	toRe     = regexp.MustCompile(`to=<([^>]+)>`)
	statusRe = regexp.MustCompile(`status=(\w+)`)
)

// Aggregate folds parsed log lines into per-queue-id transactions. Lines
// must arrive in chronological order; the fold is last-write-wins for
// from, to and status, and a status-bearing line also takes over the
// transaction's timestamp and detail text.
//
// Transactions that never saw a sender or a recipient are noise (pure
// connection or warning lines) and are dropped. The result is sorted
// most recent first.
func Aggregate(lines []*LogLine) []*Transaction {
	byID := make(map[string]*Transaction)
	var order []*Transaction

	for _, line := range lines {
		if line == nil || line.QueueID == "" {
			continue
		}

		tx, seen := byID[line.QueueID]
		if !seen {
			tx = &Transaction{
				ID:        line.QueueID,
				Timestamp: line.Timestamp,
				Status:    "info",
			}
			byID[line.QueueID] = tx
			order = append(order, tx)
		}

		tx.Lines = append(tx.Lines, line.Raw)

		if m := fromRe.FindStringSubmatch(line.Message); m != nil {
			tx.From = m[1]
		}
		if m := toRe.FindStringSubmatch(line.Message); m != nil {
			tx.To = m[1]
		}
		if m := statusRe.FindStringSubmatch(line.Message); m != nil {
			tx.Status = strings.ToLower(m[1])
			tx.Detail = line.Message
			tx.Timestamp = line.Timestamp
		}
	}

	out := make([]*Transaction, 0, len(order))
	for _, tx := range order {
		if tx.From == "" && tx.To == "" {
			continue
		}
		if tx.From == "" {
			tx.From = AddrUnknown
		}
		if tx.To == "" {
			tx.To = AddrUnknown
		}
		if tx.Detail == "" {
			if n := len(tx.Lines); n > 0 {
				tx.Detail = tx.Lines[n-1]
			} else {
				tx.Detail = NoDetail
			}
		}
		out = append(out, tx)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	return out
}
