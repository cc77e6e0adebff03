/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package endpoint

import (
	"net/netip"
	"regexp"
	"strconv"
	"strings"
)

type Strategy int

const (
	// Pattern accepts dotted-quad IPv4 hosts with a port in [1, 65535].
	Pattern Strategy = iota
	// IPAddr accepts any IPv4 or IPv6 host with a port in [0, 65535].
	IPAddr
)

const (
	HelpStrategies = "Must be one of: pattern, ipaddr."
)

// DefaultStrategy is the stricter of the two strategies.
var DefaultStrategy = Pattern

var strategyNames = map[Strategy]string{
	Pattern: "pattern",
	IPAddr:  "ipaddr",
}

const (
	octetPattern = `(25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9]?[0-9])`
	portPattern  = `([1-9][0-9]{0,3}|[1-5][0-9]{4}|6[0-4][0-9]{3}|65[0-4][0-9]{2}|655[0-2][0-9]|6553[0-5])`
)

var ipv4EndpointRegexp = regexp.MustCompile(
	`^(` + octetPattern + `\.){3}` + octetPattern + `:` + portPattern + `$`)

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStrategy maps a strategy name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, ErrUnknownStrategy{Name: name}
}

// Valid reports whether raw denotes an endpoint under this strategy.
func (s Strategy) Valid(raw string) bool {
	switch s {
	case Pattern:
		return ipv4EndpointRegexp.MatchString(raw)
	case IPAddr:
		return validIPAddr(raw)
	default:
		return false
	}
}

func validIPAddr(raw string) bool {
	i := strings.LastIndex(raw, ":")
	if i < 0 {
		return false
	}
	host, port := raw[:i], raw[i+1:]
	// brackets only enclose IPv6 hosts
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
		if !strings.Contains(host, ":") {
			return false
		}
	}
	if _, err := netip.ParseAddr(host); err != nil {
		return false
	}
	_, err := strconv.ParseUint(port, 10, 16)
	return err == nil
}
