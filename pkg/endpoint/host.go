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
	"net"
)

const (
	DefaultHostIP    = "127.0.0.1"
	DefaultHostPort  = 4660
	HelpHostPolicies = "Must be one of: loopback, auto."
)

// HostPolicy picks the host endpoint when none is given on the command line.
type HostPolicy interface {
	HostEndpoint() (Endpoint, error)
	String() string
}

type defaultLoopback struct {
	ep Endpoint
}

// DefaultLoopback always returns host:port.
func DefaultLoopback(host string, port uint16) HostPolicy {
	return &defaultLoopback{ep: Endpoint{Host: host, Port: port}}
}

func (p *defaultLoopback) HostEndpoint() (Endpoint, error) {
	return p.ep, nil
}

func (p *defaultLoopback) String() string {
	return "loopback"
}

// AddrSource lists the addresses configured on the local interfaces.
type AddrSource func() ([]net.Addr, error)

type autoDetect struct {
	port  uint16
	addrs AddrSource
}

// AutoDetectFirstNonLoopback returns the first non-loopback IPv4 address
// of the local interfaces combined with port.
func AutoDetectFirstNonLoopback(port uint16) HostPolicy {
	return AutoDetectFrom(net.InterfaceAddrs, port)
}

func AutoDetectFrom(addrs AddrSource, port uint16) HostPolicy {
	return &autoDetect{port: port, addrs: addrs}
}

func (p *autoDetect) HostEndpoint() (Endpoint, error) {
	addrs, err := p.addrs()
	if err != nil {
		return Endpoint{}, err
	}
	for _, addr := range addrs {
		var ip net.IP
		switch a := addr.(type) {
		case *net.IPNet:
			ip = a.IP
		case *net.IPAddr:
			ip = a.IP
		default:
			continue
		}
		if ip.IsLoopback() {
			continue
		}
		if ip4 := ip.To4(); ip4 != nil {
			return Endpoint{Host: ip4.String(), Port: p.port}, nil
		}
	}
	return Endpoint{}, ErrNoLocalAddress{}
}

func (p *autoDetect) String() string {
	return "auto"
}

// ParseHostPolicy maps a policy name to a HostPolicy using port for the host side.
func ParseHostPolicy(name string, port uint16) (HostPolicy, error) {
	switch name {
	case "loopback":
		return DefaultLoopback(DefaultHostIP, port), nil
	case "auto":
		return AutoDetectFirstNonLoopback(port), nil
	default:
		return nil, ErrUnknownHostPolicy{Name: name}
	}
}
