package service

import (
	"net"
	"strconv"
	"strings"
)

// isIPHost reports whether host is an IP literal. Besides the canonical IPv4
// and IPv6 forms it accepts the numeric IPv4 spellings resolvers honour:
// one to four dot-separated parts, each decimal, octal (leading 0) or hex
// (0x), with the last part filling the remaining bytes. "3232235777",
// "0xC0A80101" and "192.168.257" all name an address.
func isIPHost(host string) bool {
	if net.ParseIP(host) != nil {
		return true
	}
	_, ok := parseNumericIPv4(host)
	return ok
}

// parseNumericIPv4 decodes host the way inet_aton does.
func parseNumericIPv4(host string) (net.IP, bool) {
	parts := strings.Split(host, ".")
	if len(parts) == 0 || len(parts) > 4 {
		return nil, false
	}

	values := make([]uint64, len(parts))
	for i, part := range parts {
		v, ok := parseIPv4Part(part)
		if !ok {
			return nil, false
		}
		values[i] = v
	}

	var addr uint64
	for _, v := range values[:len(values)-1] {
		if v > 0xff {
			return nil, false
		}
		addr = addr<<8 | v
	}
	lastBits := uint(8 * (5 - len(values)))
	last := values[len(values)-1]
	if last >= 1<<lastBits {
		return nil, false
	}
	addr = addr<<lastBits | last

	return net.IPv4(byte(addr>>24), byte(addr>>16), byte(addr>>8), byte(addr)), true
}

func parseIPv4Part(part string) (uint64, bool) {
	if part == "" {
		return 0, false
	}
	base := 10
	digits := part
	switch {
	case len(part) > 2 && (part[:2] == "0x" || part[:2] == "0X"):
		base, digits = 16, part[2:]
	case len(part) > 1 && part[0] == '0':
		base, digits = 8, part[1:]
	}
	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, false
	}
	return v, true
}
