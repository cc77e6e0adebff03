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

type TriggerMode string

const (
	// TriggerImmediate triggers automatically without a signal
	TriggerImmediate TriggerMode = "imm"
	// TriggerExternal uses trig_in on the board or software commands
	TriggerExternal TriggerMode = "ext"
	// TriggerSelf triggers on analog signals
	TriggerSelf TriggerMode = "self"

	HelpTriggerModes = "Must be one of: imm, ext, self."
)

var triggerCodes = map[TriggerMode]uint16{
	TriggerImmediate: 0,
	TriggerExternal:  1,
	TriggerSelf:      2,
}

func ParseTriggerMode(s string) (TriggerMode, error) {
	mode := TriggerMode(s)
	if _, ok := triggerCodes[mode]; !ok {
		return "", ErrInvalidMode{What: "trigger mode", Value: s, Help: HelpTriggerModes}
	}
	return mode, nil
}

type LookbackMode string

const (
	LookbackForced LookbackMode = "forced"
	LookbackTrig   LookbackMode = "trig"

	HelpLookbackModes = "Must be one of: forced, trig."
)

var lookbackCodes = map[LookbackMode]uint16{
	LookbackForced: 0,
	LookbackTrig:   1,
}

// ParseLookbackMode maps an empty string to LookbackForced.
func ParseLookbackMode(s string) (LookbackMode, error) {
	if s == "" {
		return LookbackForced, nil
	}
	mode := LookbackMode(s)
	if _, ok := lookbackCodes[mode]; !ok {
		return "", ErrInvalidMode{What: "lookback mode", Value: s, Help: HelpLookbackModes}
	}
	return mode, nil
}
