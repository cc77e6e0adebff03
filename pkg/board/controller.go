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
	"fmt"

	"naluscientific.com/go-nalu/pkg/layers"
	"naluscientific.com/go-nalu/pkg/models"
)

type BoardController struct {
	b *Board
}

func GetBoardController(b *Board) *BoardController {
	return &BoardController{b: b}
}

// ResetBoard pulses the reset register.
func (c *BoardController) ResetBoard() error {
	regs := c.b.Model.Registers
	c.b.log.Info("Resetting board")
	return c.b.WriteRegs(
		&layers.Reg{Addr: regs.Reset, Value: 1},
		&layers.Reg{Addr: regs.Reset, Value: 0},
	)
}

// StartReadout selects the trigger and lookback modes and enables readout.
func (c *BoardController) StartReadout(trig TriggerMode, lb LookbackMode) error {
	trigCode, ok := triggerCodes[trig]
	if !ok {
		return ErrInvalidMode{What: "trigger mode", Value: string(trig), Help: HelpTriggerModes}
	}
	lbCode, ok := lookbackCodes[lb]
	if !ok {
		return ErrInvalidMode{What: "lookback mode", Value: string(lb), Help: HelpLookbackModes}
	}
	regs := c.b.Model.Registers
	c.b.log.Info("Starting readout: trigger: %s lookback: %s", trig, lb)
	return c.b.WriteRegs(
		&layers.Reg{Addr: regs.TriggerMode, Value: trigCode},
		&layers.Reg{Addr: regs.LookbackMode, Value: lbCode},
		&layers.Reg{Addr: regs.ReadoutCtrl, Value: 1},
	)
}

func (c *BoardController) StopReadout() error {
	c.b.log.Info("Stopping readout")
	return c.b.WriteRegs(&layers.Reg{Addr: c.b.Model.Registers.ReadoutCtrl, Value: 0})
}

type ReadoutController struct {
	b *Board
}

func GetReadoutController(b *Board) *ReadoutController {
	return &ReadoutController{b: b}
}

// SetReadWindow programs the number of windows to read, the lookback and
// the number of windows written after a trigger.
func (c *ReadoutController) SetReadWindow(windows, lookback, writeAfterTrig int) error {
	if err := CheckReadWindow(c.b.Model, windows, lookback, writeAfterTrig); err != nil {
		return err
	}
	regs := c.b.Model.Registers
	c.b.log.Info("Setting read window: windows: %d lookback: %d write after trigger: %d",
		windows, lookback, writeAfterTrig)
	return c.b.WriteRegs(
		&layers.Reg{Addr: regs.Windows, Value: uint16(windows)},
		&layers.Reg{Addr: regs.Lookback, Value: uint16(lookback)},
		&layers.Reg{Addr: regs.WriteAfterTrig, Value: uint16(writeAfterTrig)},
	)
}

// SetRecordWindow programs the first window and the number of windows recorded.
func (c *ReadoutController) SetRecordWindow(start, length int) error {
	if err := CheckRecordWindow(c.b.Model, start, length); err != nil {
		return err
	}
	regs := c.b.Model.Registers
	c.b.log.Info("Setting record window: start: %d length: %d", start, length)
	return c.b.WriteRegs(
		&layers.Reg{Addr: regs.RecordStart, Value: uint16(start)},
		&layers.Reg{Addr: regs.RecordLength, Value: uint16(length)},
	)
}

// CheckReadWindow validates a read window against the windows of model.
func CheckReadWindow(model *models.Model, windows, lookback, writeAfterTrig int) error {
	max := model.Windows
	if err := checkRange("windows", windows, 1, max); err != nil {
		return err
	}
	if err := checkRange("lookback", lookback, 0, max); err != nil {
		return err
	}
	return checkRange("write after trigger", writeAfterTrig, 0, max)
}

// CheckRecordWindow validates a record window against the windows of model.
func CheckRecordWindow(model *models.Model, start, length int) error {
	max := model.Windows
	if err := checkRange("start window", start, 0, max-1); err != nil {
		return err
	}
	return checkRange("length", length, 1, max)
}

func checkRange(what string, v, min, max int) error {
	if v < min || v > max {
		return ErrInvalidWindow{What: fmt.Sprintf("%s %d out of range [%d, %d]", what, v, min, max)}
	}
	return nil
}

// Startup brings a freshly reset board to its default operating state.
func Startup(b *Board) error {
	if len(b.Model.Startup) == 0 {
		return nil
	}
	b.log.Info("Running startup sequence (%d registers)", len(b.Model.Startup))
	regs := make([]*layers.Reg, 0, len(b.Model.Startup))
	for _, w := range b.Model.Startup {
		regs = append(regs, &layers.Reg{Addr: w.Addr, Value: w.Value})
	}
	return b.WriteRegs(regs...)
}
