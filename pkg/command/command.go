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
	"context"
	"errors"
	"fmt"
	"time"

	"naluscientific.com/go-nalu/pkg/board"
	"naluscientific.com/go-nalu/pkg/endpoint"
	"naluscientific.com/go-nalu/pkg/layers"
	"naluscientific.com/go-nalu/pkg/models"
)

const (
	// InitHostPolicy is the host policy of init-board unless configured
	InitHostPolicy = "loopback"
	// CaptureHostPolicy is the host policy of start-capture and stop-capture unless configured
	CaptureHostPolicy = "auto"
	LogName           = "naludaq.api"
)

type BoardRequest struct {
	Model   string `json:"model"`
	BoardIP string `json:"board_ip"`
	HostIP  string `json:"host_ip,omitempty"`
}

type CaptureRequest struct {
	BoardRequest
	// ReadWindow is windows, lookback and write after trigger
	ReadWindow []int `json:"read_window,omitempty"`
	// RecordWindow is start window and length
	RecordWindow []int  `json:"record_window,omitempty"`
	TriggerMode  string `json:"trigger_mode"`
	LookbackMode string `json:"lookback_mode,omitempty"`
}

type RegHex struct {
	Addr  string `json:"addr"`
	Value string `json:"value"`
}

type BoardState struct {
	Board     string     `json:"board"`
	Registers []*RegHex  `json:"registers"`
	Run       *board.Run `json:"run,omitempty"`
}

// target is a fully resolved board request
type target struct {
	model   *models.Model
	boardEP endpoint.Endpoint
	hostEP  endpoint.Endpoint
}

// resolve validates every user supplied setting of req. It touches no
// network resource.
func (e *Env) resolve(req BoardRequest, defaultPolicy string) (*target, error) {
	model, err := e.Models.Get(req.Model)
	if err != nil {
		return nil, ErrConfig{What: "model", Err: err}
	}
	boardEP, err := e.Validator.Endpoint(req.BoardIP)
	if err != nil {
		return nil, ErrConfig{What: "Invalid format: Board IP", Err: err}
	}

	var hostEP endpoint.Endpoint
	if req.HostIP != "" {
		hostEP, err = e.Validator.Endpoint(req.HostIP)
		if err != nil {
			return nil, ErrConfig{What: "Invalid format: Host IP", Err: err}
		}
	} else {
		name := e.Config.HostPolicy
		if name == "" {
			name = defaultPolicy
		}
		policy, err := endpoint.ParseHostPolicy(name, e.Config.HostPort)
		if err != nil {
			return nil, ErrConfig{What: "host policy", Err: err}
		}
		hostEP, err = policy.HostEndpoint()
		if err != nil {
			return nil, ErrConfig{What: fmt.Sprintf("host endpoint (%s)", policy), Err: err}
		}
		e.log.Debug("Host endpoint from %s policy: %s", policy, hostEP)
	}
	return &target{model: model, boardEP: boardEP, hostEP: hostEP}, nil
}

// InitBoard resets a board and runs the startup sequence of its model.
func (e *Env) InitBoard(ctx context.Context, req BoardRequest) error {
	t, err := e.resolve(req, InitHostPolicy)
	if err != nil {
		return err
	}
	return e.withBoard(ctx, t, func(b *board.Board, _ *board.State) error {
		if err := board.GetBoardController(b).ResetBoard(); err != nil {
			return err
		}
		return board.Startup(b)
	})
}

// window applies the read or record window of req, whichever is set.
type window func(b *board.Board) error

func checkWindow(req CaptureRequest, model *models.Model) (window, []int, error) {
	switch {
	case req.ReadWindow != nil && req.RecordWindow != nil:
		return nil, nil, ErrConfig{What: "read window and record window are mutually exclusive"}
	case req.ReadWindow != nil:
		w := req.ReadWindow
		if len(w) != 3 {
			return nil, nil, ErrConfig{What: fmt.Sprintf("read window takes 3 values: windows lookback write_after_trig, got %d", len(w))}
		}
		if err := board.CheckReadWindow(model, w[0], w[1], w[2]); err != nil {
			return nil, nil, ErrConfig{What: "read window", Err: err}
		}
		return func(b *board.Board) error {
			return board.GetReadoutController(b).SetReadWindow(w[0], w[1], w[2])
		}, w, nil
	case req.RecordWindow != nil:
		w := req.RecordWindow
		if len(w) != 2 {
			return nil, nil, ErrConfig{What: fmt.Sprintf("record window takes 2 values: start length, got %d", len(w))}
		}
		if err := board.CheckRecordWindow(model, w[0], w[1]); err != nil {
			return nil, nil, ErrConfig{What: "record window", Err: err}
		}
		return func(b *board.Board) error {
			return board.GetReadoutController(b).SetRecordWindow(w[0], w[1])
		}, w, nil
	}
	return nil, nil, ErrConfig{What: "one of read window or record window is required"}
}

// StartCapture programs the readout window and starts the readout. The run
// is recorded in the state database when there is one.
func (e *Env) StartCapture(ctx context.Context, req CaptureRequest) (*board.Run, error) {
	t, err := e.resolve(req.BoardRequest, CaptureHostPolicy)
	if err != nil {
		return nil, err
	}
	setWindow, values, err := checkWindow(req, t.model)
	if err != nil {
		return nil, err
	}
	trig, err := board.ParseTriggerMode(req.TriggerMode)
	if err != nil {
		return nil, ErrConfig{What: "trigger mode", Err: err}
	}
	lb, err := board.ParseLookbackMode(req.LookbackMode)
	if err != nil {
		return nil, ErrConfig{What: "lookback mode", Err: err}
	}

	run := board.NewRun(t.boardEP.String(), t.model.Name, trig, lb)
	run.Window = values
	err = e.withBoard(ctx, t, func(b *board.Board, state *board.State) error {
		if err := setWindow(b); err != nil {
			return err
		}
		if err := board.GetBoardController(b).StartReadout(trig, lb); err != nil {
			return err
		}
		if state == nil {
			return nil
		}
		prev, err := state.StartRun(run)
		if err != nil {
			return err
		}
		if prev != nil {
			e.log.Warning("Run %s on %s started %s was never stopped", prev.ID, prev.Board,
				prev.Started.Format(time.RFC3339))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("Capture started: run: %s board: %s", run.ID, run.Board)
	return run, nil
}

// StopCapture stops the readout. It returns the closed run or nil when no
// open run is known for the board.
func (e *Env) StopCapture(ctx context.Context, req BoardRequest) (*board.Run, error) {
	t, err := e.resolve(req, CaptureHostPolicy)
	if err != nil {
		return nil, err
	}
	var run *board.Run
	err = e.withBoard(ctx, t, func(b *board.Board, state *board.State) error {
		if err := board.GetBoardController(b).StopReadout(); err != nil {
			return err
		}
		if state == nil {
			return nil
		}
		stopped, err := state.StopRun(t.boardEP.String(), time.Now())
		if errors.As(err, &board.ErrNotFound{}) {
			e.log.Warning("No open run for board %s", t.boardEP)
			return nil
		}
		run = stopped
		return err
	})
	if err != nil {
		return nil, err
	}
	if run != nil {
		e.log.Info("Capture stopped: run: %s board: %s", run.ID, run.Board)
	}
	return run, nil
}

// BoardState returns the cached registers and the latest run of a board.
func (e *Env) BoardState(boardIP string) (*BoardState, error) {
	boardEP, err := e.Validator.Endpoint(boardIP)
	if err != nil {
		return nil, ErrConfig{What: "Invalid format: Board IP", Err: err}
	}
	state, err := e.State()
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrConfig{What: "state database is disabled"}
	}

	key := boardEP.String()
	result := &BoardState{Board: key, Registers: []*RegHex{}}
	regs, err := state.GetRegAll(key)
	if err != nil && !errors.As(err, &board.ErrNotFound{}) {
		return nil, err
	}
	for _, reg := range regs {
		result.Registers = append(result.Registers, toRegHex(reg))
	}
	run, err := state.GetRun(key)
	if err != nil && !errors.As(err, &board.ErrNotFound{}) {
		return nil, err
	}
	result.Run = run

	if len(result.Registers) == 0 && result.Run == nil {
		return nil, board.ErrNotFound{What: fmt.Sprintf("board %s", key)}
	}
	return result, nil
}

func toRegHex(reg *layers.Reg) *RegHex {
	addr, value := reg.Hex()
	return &RegHex{Addr: addr, Value: value}
}
