// Package extract recovers a validated host:port pair from a harvested text
// corpus.
//
// Strategies run in a fixed order and the first valid match wins. When the
// corpus contains several valid hosts or ports (settings screens are full of
// unrelated numbers) the extractor deliberately keeps the first one rather
// than disambiguating; that precision/recall trade-off is part of the
// contract, not an oversight.
package extract

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
)

// Candidate is a validated host:port pair.
type Candidate struct {
	Host string
	Port int
}

// String formats the candidate as host:port.
func (c Candidate) String() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Options controls validation.
type Options struct {
	MinPort     int  // inclusive; zero means DefaultMinPort
	MaxPort     int  // inclusive; zero means DefaultMaxPort
	PrivateOnly bool // restrict hosts to RFC 1918 ranges
}

// Default port window: the pairing port is ephemeral and never privileged.
const (
	DefaultMinPort = 1024
	DefaultMaxPort = 65535
)

var (
	// Word-bounded on both ends so a host or port is never carved out of a
	// longer digit run.
	hostPattern = `\b(\d{1,3}(?:\.\d{1,3}){3})\b`
	portPattern = `\b(\d{4,5})\b`

	// Joined patterns, tried against the whole corpus first. The fullwidth
	// colon shows up on CJK-localized screens.
	joinedPatterns = []*regexp.Regexp{
		regexp.MustCompile(hostPattern + `\s*:\s*` + portPattern),
		regexp.MustCompile(hostPattern + `\s*：\s*` + portPattern),
		regexp.MustCompile(hostPattern + `\s+` + portPattern),
	}

	hostOnlyRe = regexp.MustCompile(hostPattern)
	portOnlyRe = regexp.MustCompile(portPattern)
)

// FromCorpus applies the extraction strategies to the corpus. The second
// return value is false when no valid pair was found.
func FromCorpus(corpus string, opts Options) (Candidate, bool) {
	if c, ok := joined(corpus, opts); ok {
		return c, true
	}
	return separated(corpus, opts)
}

// joined looks for host and port adjacent in a single match.
func joined(corpus string, opts Options) (Candidate, bool) {
	for _, re := range joinedPatterns {
		for _, m := range re.FindAllStringSubmatch(corpus, -1) {
			host, port := m[1], m[2]
			if !ValidHost(host, opts) {
				continue
			}
			p, ok := validPort(port, opts)
			if !ok {
				continue
			}
			return Candidate{Host: host, Port: p}, true
		}
	}
	return Candidate{}, false
}

// separated collects host-shaped and port-shaped tokens independently and
// pairs the first valid of each.
func separated(corpus string, opts Options) (Candidate, bool) {
	var host string
	for _, h := range hostOnlyRe.FindAllString(corpus, -1) {
		if ValidHost(h, opts) {
			host = h
			break
		}
	}
	if host == "" {
		return Candidate{}, false
	}

	for _, tok := range portOnlyRe.FindAllString(corpus, -1) {
		if p, ok := validPort(tok, opts); ok {
			return Candidate{Host: host, Port: p}, true
		}
	}
	return Candidate{}, false
}

// ValidHost reports whether s is a well-formed dotted quad, optionally
// restricted to private ranges.
func ValidHost(s string, opts Options) bool {
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() == nil {
		return false
	}
	if opts.PrivateOnly && !ip.IsPrivate() {
		return false
	}
	return true
}

func validPort(s string, opts Options) (int, bool) {
	p, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}

	min, max := opts.MinPort, opts.MaxPort
	if min == 0 {
		min = DefaultMinPort
	}
	if max == 0 {
		max = DefaultMaxPort
	}
	if p < min || p > max {
		return 0, false
	}
	return p, true
}

// HasAddress reports whether the corpus contains any joined host:port match
// that validates. The controller uses this as the secondary signal that the
// feature is already active even when the toggle state is unreadable.
func HasAddress(corpus string, opts Options) bool {
	_, ok := joined(corpus, opts)
	return ok
}
