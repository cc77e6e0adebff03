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

package control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"naluscientific.com/go-nalu/pkg/board"
	"naluscientific.com/go-nalu/pkg/command"
	"naluscientific.com/go-nalu/pkg/config"
	"naluscientific.com/go-nalu/pkg/log"
	"naluscientific.com/go-nalu/pkg/models"
)

type fakeController struct {
	inits  []command.BoardRequest
	starts []command.CaptureRequest
	err    error
	run    *board.Run
}

func (c *fakeController) ListModels() []*models.Model {
	return models.Default().List()
}

func (c *fakeController) InitBoard(_ context.Context, req command.BoardRequest) error {
	c.inits = append(c.inits, req)
	return c.err
}

func (c *fakeController) StartCapture(_ context.Context, req command.CaptureRequest) (*board.Run, error) {
	c.starts = append(c.starts, req)
	return c.run, c.err
}

func (c *fakeController) StopCapture(_ context.Context, req command.BoardRequest) (*board.Run, error) {
	return c.run, c.err
}

func (c *fakeController) BoardState(boardIP string) (*command.BoardState, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &command.BoardState{Board: boardIP, Registers: []*command.RegHex{{Addr: "0x0001", Value: "0x0001"}}}, nil
}

func newTestServer(t *testing.T, ctrl *fakeController) *command.ApiClient {
	s := NewApiServer("127.0.0.1:0", ctrl, log.Discard())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return command.NewApiClient(strings.TrimPrefix(ts.URL, "http://"))
}

func TestApiRoutes(t *testing.T) {
	run := board.NewRun("192.168.1.59:4660", "asocv3", board.TriggerExternal, board.LookbackForced)
	ctrl := &fakeController{run: run}
	client := newTestServer(t, ctrl)

	list, err := client.Models()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(list) != len(models.Default().Names()) {
		t.Fatalf("invalid number of models: %d", len(list))
	}

	req := command.BoardRequest{Model: "asocv3", BoardIP: "192.168.1.59:4660"}
	if err := client.InitBoard(req); err != nil {
		t.Fatalf("%+v", err)
	}
	if len(ctrl.inits) != 1 || ctrl.inits[0] != req {
		t.Fatalf("invalid init request: %+v", ctrl.inits)
	}

	got, err := client.StartCapture(command.CaptureRequest{BoardRequest: req, ReadWindow: []int{8, 4, 2}, TriggerMode: "ext"})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if got.ID != run.ID {
		t.Fatalf("invalid run: %+v", got)
	}
	if len(ctrl.starts) != 1 || len(ctrl.starts[0].ReadWindow) != 3 || ctrl.starts[0].RecordWindow != nil {
		t.Fatalf("invalid start request: %+v", ctrl.starts)
	}

	state, err := client.BoardState("192.168.1.59:4660")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if state.Board != "192.168.1.59:4660" || len(state.Registers) != 1 {
		t.Fatalf("invalid state: %+v", state)
	}

	ctrl.run = nil
	stopped, err := client.StopCapture(req)
	if err != nil || stopped != nil {
		t.Fatalf("expected no run: %+v %v", stopped, err)
	}
}

func TestApiErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		err    error
		status int
	}{
		{"config", command.ErrConfig{What: "Invalid format: Board IP"}, http.StatusBadRequest},
		{"not-found", board.ErrNotFound{What: "board"}, http.StatusNotFound},
		{"transport", fmt.Errorf("send: %w", net.ErrClosed), http.StatusBadGateway},
	} {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestServer(t, &fakeController{err: tc.err})
			err := client.InitBoard(command.BoardRequest{Model: "asocv3", BoardIP: "x"})
			var apiErr command.ErrApi
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected api error, got %v", err)
			}
			if !strings.HasPrefix(apiErr.Status, fmt.Sprint(tc.status)) {
				t.Fatalf("invalid status: got=%s, want=%d", apiErr.Status, tc.status)
			}
			if !strings.Contains(apiErr.Message, tc.err.Error()) {
				t.Fatalf("invalid message: %s", apiErr.Message)
			}
		})
	}
}

func TestApiBadBody(t *testing.T) {
	s := NewApiServer("127.0.0.1:0", &fakeController{}, log.Discard())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/readout/start", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/board/init", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("invalid status: %d", rec.Code)
	}
}

func TestControlServer(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "state.db")
	cfg.ApiAddress = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewControlServer(ctx, cfg, log.Discard())
	if err != nil {
		t.Fatalf("%+v", err)
	}
	done := make(chan error, 1)
	go func() { done <- s.Run() }()
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}

	cfg.EndpointCheck = "fuzzy"
	if _, err := NewControlServer(context.Background(), cfg, log.Discard()); !errors.As(err, &command.ErrConfig{}) {
		t.Fatalf("expected config error, got %v", err)
	}
}
