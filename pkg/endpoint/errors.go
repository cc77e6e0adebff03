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
	"fmt"
)

// ErrInvalidEndpoint returned when a string is rejected by a validation strategy
type ErrInvalidEndpoint struct {
	Value    string
	Strategy Strategy
}

func (e ErrInvalidEndpoint) Error() string {
	return fmt.Sprintf("Invalid endpoint %q: expected ADDRESS:PORT (%s check)", e.Value, e.Strategy)
}

// ErrMalformedPort returned when the port part of an endpoint is not a number
type ErrMalformedPort struct {
	Value string
}

func (e ErrMalformedPort) Error() string {
	return fmt.Sprintf("Malformed port: %q", e.Value)
}

type ErrUnknownStrategy struct {
	Name string
}

func (e ErrUnknownStrategy) Error() string {
	return fmt.Sprintf("Unknown endpoint check %q. %s", e.Name, HelpStrategies)
}

type ErrUnknownHostPolicy struct {
	Name string
}

func (e ErrUnknownHostPolicy) Error() string {
	return fmt.Sprintf("Unknown host policy %q. %s", e.Name, HelpHostPolicies)
}

// ErrNoLocalAddress returned when no non-loopback IPv4 address is configured on the host
type ErrNoLocalAddress struct{}

func (e ErrNoLocalAddress) Error() string {
	return "No non-loopback IPv4 address found on local interfaces"
}
