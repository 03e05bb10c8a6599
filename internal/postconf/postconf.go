// Package postconf reads and edits the small slice of Postfix main.cf
// the dashboard manages: the mynetworks directive.
package postconf

import (
	"errors"
	"os"
	"regexp"
	"strings"
)

var ErrNoValidNetworks = errors.New("no valid networks provided")

var (
	ipv4Re     = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}(/\d{1,2})?$`)
	hostnameRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
	ipv6Re     = regexp.MustCompile(`^\[?[0-9a-fA-F:]+\]?(/\d{1,3})?$`)

	splitRe = regexp.MustCompile(`[\s,]+`)
)

// ReadAllowedNetworks returns the values of the first uncommented
// mynetworks line, or an empty list when the directive is absent.
func ReadAllowedNetworks(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "mynetworks") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		_, value, found := strings.Cut(trimmed, "=")
		if !found {
			continue
		}
		var networks []string
		for _, net := range splitRe.Split(strings.TrimSpace(value), -1) {
			if net != "" {
				networks = append(networks, net)
			}
		}
		return networks, nil
	}

	return []string{}, nil
}

// WriteAllowedNetworks validates the given networks and rewrites the
// mynetworks line in place, appending one if the file has none. Returns
// the networks actually written.
func WriteAllowedNetworks(path string, networks []string) ([]string, error) {
	valid := filterValid(networks)
	if len(valid) == 0 {
		return nil, ErrNoValidNetworks
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	directive := "mynetworks = " + strings.Join(valid, " ")

	found := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "mynetworks") && !strings.HasPrefix(trimmed, "#") {
			lines[i] = directive
			found = true
		}
	}
	if !found {
		lines = append(lines, directive)
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return nil, err
	}
	return valid, nil
}

func filterValid(networks []string) []string {
	var valid []string
	for _, net := range networks {
		trimmed := strings.TrimSpace(net)
		if trimmed == "" {
			continue
		}
		if ipv4Re.MatchString(trimmed) || hostnameRe.MatchString(trimmed) || ipv6Re.MatchString(trimmed) {
			valid = append(valid, trimmed)
		}
	}
	return valid
}
