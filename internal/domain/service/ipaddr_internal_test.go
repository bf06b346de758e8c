package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumericIPv4(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"192.168.1.1", "192.168.1.1"},
		{"3232235777", "192.168.1.1"},
		{"0xC0A80101", "192.168.1.1"},
		{"0xc0.0xa8.0x1.0x1", "192.168.1.1"},
		{"0300.0250.01.01", "192.168.1.1"},
		{"192.168.257", "192.168.1.1"},
		{"192.11010305", "192.168.1.1"},
		{"127.1", "127.0.0.1"},
		{"0", "0.0.0.0"},
		{"4294967295", "255.255.255.255"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			ip, ok := parseNumericIPv4(tt.host)
			if assert.True(t, ok) {
				assert.Equal(t, tt.want, ip.String())
			}
		})
	}
}

func TestParseNumericIPv4_Rejects(t *testing.T) {
	for _, host := range []string{
		"", "example.com", "1.2.3.4.5", "256.1.1.1", "1.2.65536",
		"4294967296", "08.1.1.1", "1..1", "0xZZ", "1.2.3.", "-1",
	} {
		t.Run(host, func(t *testing.T) {
			_, ok := parseNumericIPv4(host)
			assert.False(t, ok)
		})
	}
}

func TestIsIPHost(t *testing.T) {
	assert.True(t, isIPHost("::1"))
	assert.True(t, isIPHost("2001:db8::1"))
	assert.True(t, isIPHost("0xC0A80101"))
	assert.False(t, isIPHost("paypa1.com"))
}
