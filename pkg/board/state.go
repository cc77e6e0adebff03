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
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"naluscientific.com/go-nalu/pkg/layers"
)

const (
	RegsBucketName = "regs"
	RunsBucketName = "runs"
	// OpenTimeout bounds the wait for the database lock held by another process
	OpenTimeout = 2 * time.Second
)

// Run is one capture, from start-capture to stop-capture.
type Run struct {
	ID           uuid.UUID  `json:"id"`
	Board        string     `json:"board"`
	Model        string     `json:"model"`
	TriggerMode  string     `json:"trigger_mode"`
	LookbackMode string     `json:"lookback_mode"`
	Window       []int      `json:"window,omitempty"`
	Started      time.Time  `json:"started"`
	Stopped      *time.Time `json:"stopped,omitempty"`
}

func NewRun(board, model string, trig TriggerMode, lb LookbackMode) *Run {
	return &Run{
		ID:           uuid.New(),
		Board:        board,
		Model:        model,
		TriggerMode:  string(trig),
		LookbackMode: string(lb),
		Started:      time.Now().UTC(),
	}
}

func (r *Run) Open() bool {
	return r.Stopped == nil
}

// State keeps the last known register values and the current run of each board.
type State struct {
	DB *bbolt.DB
}

func OpenState(path string) (*State, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: OpenTimeout})
	if errors.Is(err, bbolt.ErrTimeout) {
		return nil, fmt.Errorf("open state %s: %w", path, ErrStateLocked)
	}
	if err != nil {
		return nil, fmt.Errorf("open state %s: %w", path, err)
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{RegsBucketName, RunsBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &State{DB: db}, nil
}

func uint16ToByte(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func (s *State) Close() error {
	return s.DB.Close()
}

// SetRegs stores register values for a board
func (s *State) SetRegs(board string, regs []*layers.Reg) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket([]byte(RegsBucketName)).CreateBucketIfNotExists([]byte(board))
		if err != nil {
			return err
		}
		for _, reg := range regs {
			if err := b.Put(uint16ToByte(reg.Addr), uint16ToByte(reg.Value)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *State) GetReg(board string, addr uint16) (*layers.Reg, error) {
	var value uint16
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(RegsBucketName)).Bucket([]byte(board))
		if b == nil {
			return ErrNotFound{What: fmt.Sprintf("board %s", board)}
		}
		valueBytes := b.Get(uint16ToByte(addr))
		if valueBytes == nil {
			return ErrNotFound{What: fmt.Sprintf("register 0x%04x of board %s", addr, board)}
		}
		value = binary.BigEndian.Uint16(valueBytes)
		return nil
	}); err != nil {
		return nil, err
	}
	return &layers.Reg{Addr: addr, Value: value}, nil
}

// GetRegAll returns the registers of a board ordered by address
func (s *State) GetRegAll(board string) ([]*layers.Reg, error) {
	var regs []*layers.Reg
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(RegsBucketName)).Bucket([]byte(board))
		if b == nil {
			return ErrNotFound{What: fmt.Sprintf("board %s", board)}
		}
		return b.ForEach(func(k, v []byte) error {
			regs = append(regs, &layers.Reg{
				Addr:  binary.BigEndian.Uint16(k),
				Value: binary.BigEndian.Uint16(v),
			})
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return regs, nil
}

// StartRun records run as the current run of its board. It returns the
// previous run if that one was never stopped.
func (s *State) StartRun(run *Run) (*Run, error) {
	var prev *Run
	err := s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(RunsBucketName))
		if data := b.Get([]byte(run.Board)); data != nil {
			r := &Run{}
			if err := yaml.Unmarshal(data, r); err != nil {
				return err
			}
			if r.Open() {
				prev = r
			}
		}
		data, err := yaml.Marshal(run)
		if err != nil {
			return err
		}
		return b.Put([]byte(run.Board), data)
	})
	if err != nil {
		return nil, err
	}
	return prev, nil
}

// StopRun closes the current run of a board.
func (s *State) StopRun(board string, at time.Time) (*Run, error) {
	run := &Run{}
	err := s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(RunsBucketName))
		data := b.Get([]byte(board))
		if data == nil {
			return ErrNotFound{What: fmt.Sprintf("run for board %s", board)}
		}
		if err := yaml.Unmarshal(data, run); err != nil {
			return err
		}
		if !run.Open() {
			return ErrNotFound{What: fmt.Sprintf("open run for board %s", board)}
		}
		stopped := at.UTC()
		run.Stopped = &stopped
		data, err := yaml.Marshal(run)
		if err != nil {
			return err
		}
		return b.Put([]byte(board), data)
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun returns the latest run of a board, open or not.
func (s *State) GetRun(board string) (*Run, error) {
	run := &Run{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(RunsBucketName)).Get([]byte(board))
		if data == nil {
			return ErrNotFound{What: fmt.Sprintf("run for board %s", board)}
		}
		return yaml.Unmarshal(data, run)
	}); err != nil {
		return nil, err
	}
	return run, nil
}
