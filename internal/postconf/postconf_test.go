package postconf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailwatch/internal/postconf"
)

const sampleMainCf = `# See /usr/share/postfix/main.cf.dist for a commented, more complete version
myhostname = mail.example.com
# mynetworks = 0.0.0.0/0
mynetworks = 127.0.0.0/8, 10.0.0.0/24 [::1]/128
inet_interfaces = all
`

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.cf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadAllowedNetworks(t *testing.T) {
	path := writeConf(t, sampleMainCf)

	networks, err := postconf.ReadAllowedNetworks(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.0/8", "10.0.0.0/24", "[::1]/128"}, networks)
}

func TestReadAllowedNetworksAbsentDirective(t *testing.T) {
	path := writeConf(t, "myhostname = mail.example.com\n")

	networks, err := postconf.ReadAllowedNetworks(path)
	require.NoError(t, err)
	assert.Empty(t, networks)
}

func TestReadAllowedNetworksMissingFile(t *testing.T) {
	_, err := postconf.ReadAllowedNetworks(filepath.Join(t.TempDir(), "nope.cf"))
	assert.Error(t, err)
}

func TestWriteAllowedNetworksReplacesDirective(t *testing.T) {
	path := writeConf(t, sampleMainCf)

	written, err := postconf.WriteAllowedNetworks(path, []string{"192.168.1.0/24", " 10.0.0.1 ", "not a network!!", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.0/24", "10.0.0.1"}, written)

	networks, err := postconf.ReadAllowedNetworks(path)
	require.NoError(t, err)
	assert.Equal(t, written, networks)

	// Commented line stays untouched.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# mynetworks = 0.0.0.0/0")
}

func TestWriteAllowedNetworksAppendsWhenAbsent(t *testing.T) {
	path := writeConf(t, "myhostname = mail.example.com\n")

	_, err := postconf.WriteAllowedNetworks(path, []string{"127.0.0.1"})
	require.NoError(t, err)

	networks, err := postconf.ReadAllowedNetworks(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1"}, networks)
}

func TestWriteAllowedNetworksRejectsAllInvalid(t *testing.T) {
	path := writeConf(t, sampleMainCf)

	_, err := postconf.WriteAllowedNetworks(path, []string{"!!", "bad net"})
	assert.ErrorIs(t, err, postconf.ErrNoValidNetworks)
}

func TestWriteAllowedNetworksAcceptsHostnamesAndIPv6(t *testing.T) {
	path := writeConf(t, sampleMainCf)

	written, err := postconf.WriteAllowedNetworks(path, []string{"relay.example.com", "[2001:db8::]/32"})
	require.NoError(t, err)
	assert.Equal(t, []string{"relay.example.com", "[2001:db8::]/32"}, written)
}
