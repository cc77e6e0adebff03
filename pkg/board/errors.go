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

package board

import (
	"errors"
	"fmt"
)

// ErrStateLocked returned when another process holds the state database
var ErrStateLocked = errors.New("state database is locked by another process")

type ErrNotConnected struct{}

func (e ErrNotConnected) Error() string {
	return "Board is not connected"
}

type ErrAlreadyConnected struct {
	Board string
}

func (e ErrAlreadyConnected) Error() string {
	return fmt.Sprintf("Board is already connected to %s", e.Board)
}

// ErrConnect returned when the host endpoint can not be bound
type ErrConnect struct {
	Board string
	Host  string
	Err   error
}

func (e ErrConnect) Error() string {
	return fmt.Sprintf("Error while connecting to board %s from %s: %s", e.Board, e.Host, e.Err)
}

func (e ErrConnect) Unwrap() error {
	return e.Err
}

type ErrInvalidMode struct {
	What  string
	Value string
	Help  string
}

func (e ErrInvalidMode) Error() string {
	return fmt.Sprintf("Invalid %s %q. %s", e.What, e.Value, e.Help)
}

type ErrInvalidWindow struct {
	What string
}

func (e ErrInvalidWindow) Error() string {
	return fmt.Sprintf("Invalid readout window: %s", e.What)
}

// ErrNotFound returned when the state has no record for a board or register
type ErrNotFound struct {
	What string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("Not found: %s", e.What)
}
