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

package command

import (
	"fmt"
)

// ErrConfig returned for invalid user supplied settings. No network
// resource has been touched when it is returned.
type ErrConfig struct {
	What string
	Err  error
}

func (e ErrConfig) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Configuration error: %s: %s", e.What, e.Err)
	}
	return fmt.Sprintf("Configuration error: %s", e.What)
}

func (e ErrConfig) Unwrap() error {
	return e.Err
}

// ErrApi returned when the control API answers with a non 200 status
type ErrApi struct {
	Status  string
	Message string
}

func (e ErrApi) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API error: %s", e.Status)
}
