package analytics

import "regexp"

// Client IP extraction only considers the originating client, seen in
// "connect from host[ip]" and "client=host[ip]" lines. "relay=" hosts
// are destinations and must not be counted as senders.
var (
	connectIPv4Re = regexp.MustCompile(`connect from [^\[]*\[(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})\]`)
	clientIPv4Re  = regexp.MustCompile(`client=[^\[]*\[(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})\]`)
	connectIPv6Re = regexp.MustCompile(`connect from [^\[]*\[([0-9a-fA-F:]+)\]`)
	clientIPv6Re  = regexp.MustCompile(`client=[^\[]*\[([0-9a-fA-F:]+)\]`)

	clientHostRe = regexp.MustCompile(`(?:connect from|client=)\s*([^\[\s]+)\[`)
)

// ClientIP returns the connecting client's IP from a raw log line, or
// empty if the line carries none. IPv4 is preferred over IPv6.
func ClientIP(line string) string {
	if m := connectIPv4Re.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	if m := clientIPv4Re.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	if m := connectIPv6Re.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	if m := clientIPv6Re.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// ClientHostname returns the client hostname next to the IP, or empty
// for unknown/absent hostnames.
func ClientHostname(line string) string {
	m := clientHostRe.FindStringSubmatch(line)
	if m == nil || m[1] == "unknown" {
		return ""
	}
	return m[1]
}
