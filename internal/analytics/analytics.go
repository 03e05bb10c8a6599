package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"mailwatch/internal/maillog"
)

// FilterByDate keeps transactions within [start, end]. Nil bounds are
// open. Callers pass end already moved to end-of-day when it came from a
// date-only query parameter.
func FilterByDate(txs []*maillog.Transaction, start, end *time.Time) []*maillog.Transaction {
	if start == nil && end == nil {
		return txs
	}
	out := make([]*maillog.Transaction, 0, len(txs))
	for _, tx := range txs {
		if start != nil && tx.Timestamp.Before(*start) {
			continue
		}
		if end != nil && tx.Timestamp.After(*end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// FilterByStatus keeps transactions with the given status. "all" and ""
// disable the filter.
func FilterByStatus(txs []*maillog.Transaction, status string) []*maillog.Transaction {
	if status == "" || status == "all" {
		return txs
	}
	out := make([]*maillog.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Status == status {
			out = append(out, tx)
		}
	}
	return out
}

// Paginate slices out one page. page <= 0 with a positive limit
// truncates to the first limit entries; limit <= 0 returns everything.
func Paginate(txs []*maillog.Transaction, page, limit int) []*maillog.Transaction {
	if limit <= 0 {
		return txs
	}
	start := 0
	if page > 0 {
		start = (page - 1) * limit
	}
	if start >= len(txs) {
		return []*maillog.Transaction{}
	}
	end := start + limit
	if end > len(txs) {
		end = len(txs)
	}
	return txs[start:end]
}

// Stats are the dashboard's headline delivery counters. Statuses other
// than the four common ones only contribute to Total.
type Stats struct {
	Total    int `json:"total"`
	Sent     int `json:"sent"`
	Bounced  int `json:"bounced"`
	Deferred int `json:"deferred"`
	Rejected int `json:"rejected"`
}

func ComputeStats(txs []*maillog.Transaction) Stats {
	s := Stats{Total: len(txs)}
	for _, tx := range txs {
		switch tx.Status {
		case "sent":
			s.Sent++
		case "bounced":
			s.Bounced++
		case "deferred":
			s.Deferred++
		case "rejected":
			s.Rejected++
		}
	}
	return s
}

// DayVolume is one day's delivery outcome counts, keyed by UTC date.
type DayVolume struct {
	Date     string `json:"date"`
	Sent     int    `json:"sent"`
	Bounced  int    `json:"bounced"`
	Deferred int    `json:"deferred"`
}

// VolumeTrends buckets transactions per UTC day, ascending by date.
func VolumeTrends(txs []*maillog.Transaction) []DayVolume {
	byDay := make(map[string]*DayVolume)
	for _, tx := range txs {
		date := tx.Timestamp.UTC().Format("2006-01-02")
		day, ok := byDay[date]
		if !ok {
			day = &DayVolume{Date: date}
			byDay[date] = day
		}
		switch tx.Status {
		case "sent":
			day.Sent++
		case "bounced":
			day.Bounced++
		case "deferred":
			day.Deferred++
		}
	}

	out := make([]DayVolume, 0, len(byDay))
	for _, day := range byDay {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Activity is a notable security or system event surfaced on the
// dashboard's recent activity feed.
type Activity struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
}

// RecentActivity scans the last 24 hours of transactions for rejected
// relay attempts and daemon lifecycle events. At most five entries.
func RecentActivity(txs []*maillog.Transaction, now time.Time) []Activity {
	cutoff := now.Add(-24 * time.Hour)
	activities := []Activity{}

	for i, tx := range txs {
		if !tx.Timestamp.After(cutoff) {
			continue
		}
		detail := strings.ToLower(tx.Detail)
		switch {
		case strings.Contains(detail, "relay access denied"):
			activities = append(activities, Activity{
				ID:          fmt.Sprintf("sec-%d", i),
				Timestamp:   tx.Timestamp,
				Type:        "security",
				Description: "Relay access denied for a client.",
			})
		case strings.Contains(detail, "terminating on signal"):
			activities = append(activities, Activity{
				ID:          fmt.Sprintf("sys-%d", i),
				Timestamp:   tx.Timestamp,
				Type:        "system",
				Description: "Postfix service was stopped or terminated.",
			})
		case strings.Contains(detail, "daemon started"):
			activities = append(activities, Activity{
				ID:          fmt.Sprintf("sys-%d", i),
				Timestamp:   tx.Timestamp,
				Type:        "system",
				Description: "Postfix service started.",
			})
		}
	}

	if len(activities) > 5 {
		activities = activities[:5]
	}
	return activities
}

// AddressStats is the per-sender or per-recipient rollup. SuccessRate is
// set for senders, DeliveryRate for recipients; both are the sent share
// of total messages, formatted with one decimal.
type AddressStats struct {
	Email         string    `json:"email"`
	TotalMessages int       `json:"totalMessages"`
	Sent          int       `json:"sent"`
	Bounced       int       `json:"bounced"`
	Deferred      int       `json:"deferred"`
	Rejected      int       `json:"rejected"`
	SuccessRate   string    `json:"successRate,omitempty"`
	DeliveryRate  string    `json:"deliveryRate,omitempty"`
	FirstSeen     time.Time `json:"firstSeen"`
	LastSeen      time.Time `json:"lastSeen"`
	RelayIPs      []string  `json:"relayIPs"`
}

// TopSenders ranks senders by message count. Returns the number of
// distinct senders and the top limit entries.
func TopSenders(txs []*maillog.Transaction, limit int) (int, []AddressStats) {
	return topAddresses(txs, limit, func(tx *maillog.Transaction) string { return tx.From }, true)
}

// TopRecipients ranks recipients by message count.
func TopRecipients(txs []*maillog.Transaction, limit int) (int, []AddressStats) {
	return topAddresses(txs, limit, func(tx *maillog.Transaction) string { return tx.To }, false)
}

func topAddresses(txs []*maillog.Transaction, limit int, addr func(*maillog.Transaction) string, sender bool) (int, []AddressStats) {
	type bucket struct {
		stats AddressStats
		ips   map[string]struct{}
	}
	buckets := make(map[string]*bucket)

	for _, tx := range txs {
		email := addr(tx)
		if email == "" || email == maillog.AddrUnknown {
			continue
		}
		key := strings.ToLower(email)

		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				stats: AddressStats{
					Email:     email,
					FirstSeen: tx.Timestamp,
					LastSeen:  tx.Timestamp,
				},
				ips: make(map[string]struct{}),
			}
			buckets[key] = b
		}

		b.stats.TotalMessages++
		switch tx.Status {
		case "sent":
			b.stats.Sent++
		case "bounced":
			b.stats.Bounced++
		case "deferred":
			b.stats.Deferred++
		case "rejected":
			b.stats.Rejected++
		}

		for _, line := range tx.Lines {
			if ip := ClientIP(line); ip != "" {
				b.ips[ip] = struct{}{}
			}
		}

		if tx.Timestamp.Before(b.stats.FirstSeen) {
			b.stats.FirstSeen = tx.Timestamp
		}
		if tx.Timestamp.After(b.stats.LastSeen) {
			b.stats.LastSeen = tx.Timestamp
		}
	}

	out := make([]AddressStats, 0, len(buckets))
	for _, b := range buckets {
		rate := ratio(b.stats.Sent, b.stats.TotalMessages)
		if sender {
			b.stats.SuccessRate = rate
		} else {
			b.stats.DeliveryRate = rate
		}
		b.stats.RelayIPs = sortedKeys(b.ips)
		out = append(out, b.stats)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TotalMessages > out[j].TotalMessages })
	total := len(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return total, out
}

// IPStats is the per-client-IP rollup for the connected IPs view.
type IPStats struct {
	IP            string    `json:"ip"`
	Connections   int       `json:"connections"`
	TotalMessages int       `json:"totalMessages"`
	Sent          int       `json:"sent"`
	Bounced       int       `json:"bounced"`
	Deferred      int       `json:"deferred"`
	Rejected      int       `json:"rejected"`
	SuccessRate   string    `json:"successRate"`
	Hostnames     []string  `json:"hostnames"`
	FirstSeen     time.Time `json:"firstSeen"`
	LastSeen      time.Time `json:"lastSeen"`
}

// ConnectedIPs ranks connecting client IPs by connection count. Each raw
// line with a client IP counts as a connection; the message itself is
// attributed to the first IP found in its lines.
func ConnectedIPs(txs []*maillog.Transaction, limit int) (int, []IPStats) {
	type bucket struct {
		stats IPStats
		hosts map[string]struct{}
	}
	buckets := make(map[string]*bucket)

	for _, tx := range txs {
		for _, line := range tx.Lines {
			ip := ClientIP(line)
			if ip == "" {
				continue
			}

			b, ok := buckets[ip]
			if !ok {
				b = &bucket{
					stats: IPStats{
						IP:        ip,
						FirstSeen: tx.Timestamp,
						LastSeen:  tx.Timestamp,
					},
					hosts: make(map[string]struct{}),
				}
				buckets[ip] = b
			}
			b.stats.Connections++

			if host := ClientHostname(line); host != "" {
				b.hosts[host] = struct{}{}
			}
		}

		var firstIP string
		if len(tx.Lines) > 0 {
			firstIP = ClientIP(tx.Lines[0])
		}
		if b, ok := buckets[firstIP]; firstIP != "" && ok {
			b.stats.TotalMessages++
			switch tx.Status {
			case "sent":
				b.stats.Sent++
			case "bounced":
				b.stats.Bounced++
			case "deferred":
				b.stats.Deferred++
			case "rejected":
				b.stats.Rejected++
			}
			if tx.Timestamp.Before(b.stats.FirstSeen) {
				b.stats.FirstSeen = tx.Timestamp
			}
			if tx.Timestamp.After(b.stats.LastSeen) {
				b.stats.LastSeen = tx.Timestamp
			}
		}
	}

	out := make([]IPStats, 0, len(buckets))
	for _, b := range buckets {
		b.stats.SuccessRate = ratio(b.stats.Sent, b.stats.TotalMessages)
		b.stats.Hostnames = sortedKeys(b.hosts)
		out = append(out, b.stats)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Connections > out[j].Connections })
	total := len(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return total, out
}

// Summary counts distinct senders, recipients, client IPs and domains.
type Summary struct {
	UniqueSenders    int `json:"uniqueSenders"`
	UniqueRecipients int `json:"uniqueRecipients"`
	UniqueIPs        int `json:"uniqueIPs"`
	SenderDomains    int `json:"senderDomains"`
	RecipientDomains int `json:"recipientDomains"`
	TotalMessages    int `json:"totalMessages"`
}

func Summarize(txs []*maillog.Transaction) Summary {
	senders := map[string]struct{}{}
	recipients := map[string]struct{}{}
	ips := map[string]struct{}{}
	senderDomains := map[string]struct{}{}
	recipientDomains := map[string]struct{}{}

	for _, tx := range txs {
		if tx.From != "" && tx.From != maillog.AddrUnknown {
			senders[strings.ToLower(tx.From)] = struct{}{}
			if domain := addressDomain(tx.From); domain != "" {
				senderDomains[domain] = struct{}{}
			}
		}
		if tx.To != "" && tx.To != maillog.AddrUnknown {
			recipients[strings.ToLower(tx.To)] = struct{}{}
			if domain := addressDomain(tx.To); domain != "" {
				recipientDomains[domain] = struct{}{}
			}
		}
		for _, line := range tx.Lines {
			if ip := ClientIP(line); ip != "" {
				ips[ip] = struct{}{}
			}
		}
	}

	return Summary{
		UniqueSenders:    len(senders),
		UniqueRecipients: len(recipients),
		UniqueIPs:        len(ips),
		SenderDomains:    len(senderDomains),
		RecipientDomains: len(recipientDomains),
		TotalMessages:    len(txs),
	}
}

func addressDomain(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 && i < len(email)-1 {
		return strings.ToLower(email[i+1:])
	}
	return ""
}

func ratio(part, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(part)/float64(total)*100)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
