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

// Package endpoint validates and parses ADDRESS:PORT strings used to reach
// a board and to bind the host side of a board connection.
package endpoint

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Endpoint is a UDP communication target.
type Endpoint struct {
	Host string
	Port uint16
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// UDPAddr resolves the endpoint into an address usable by the net package.
func (e Endpoint) UDPAddr() (*net.UDPAddr, error) {
	return net.ResolveUDPAddr("udp", net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port))))
}

// Parse splits s on the first colon into host and port.
// s must be validated before calling Parse. Host strings containing a colon
// (IPv6 literals) do not survive the split and fail with ErrMalformedPort.
func Parse(s string) (Endpoint, error) {
	host, port, found := strings.Cut(s, ":")
	if !found {
		return Endpoint{}, ErrMalformedPort{Value: ""}
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return Endpoint{}, ErrMalformedPort{Value: port}
	}
	return Endpoint{Host: host, Port: uint16(p)}, nil
}

// IsValid reports whether s is a valid endpoint under the default strategy.
func IsValid(s string) bool {
	return DefaultStrategy.Valid(s)
}

// Validator validates and parses endpoint strings with a fixed strategy.
type Validator struct {
	Strategy Strategy
}

func NewValidator(strategy Strategy) *Validator {
	return &Validator{Strategy: strategy}
}

// Valid reports whether s is accepted by the validator's strategy.
func (v *Validator) Valid(s string) bool {
	return v.Strategy.Valid(s)
}

// Endpoint validates s and then parses it.
func (v *Validator) Endpoint(s string) (Endpoint, error) {
	if !v.Strategy.Valid(s) {
		return Endpoint{}, ErrInvalidEndpoint{Value: s, Strategy: v.Strategy}
	}
	return Parse(s)
}
