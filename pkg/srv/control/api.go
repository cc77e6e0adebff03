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

// go-nalu API
//
// # RESTful APIs to run board sessions through a go-nalu server
//
// Schemes: http
// Host: localhost:8000
// Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package control

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"naluscientific.com/go-nalu/pkg/board"
	"naluscientific.com/go-nalu/pkg/command"
	"naluscientific.com/go-nalu/pkg/log"
	"naluscientific.com/go-nalu/pkg/srv/control/ifc"
)

const (
	LogName         = "naludaq.api"
	ShutdownTimeout = 5 * time.Second
)

// Success response
// swagger:response okResp
type RespOk struct {
	// in:body
	Body struct {
		// HTTP status code 200 - OK
		Code int `json:"code"`
	}
}

// Error Bad Request
// swagger:response badReq
type ReqBadRequest struct {
	// in:body
	Body struct {
		// HTTP status code 400 -  Bad Request
		Code int `json:"code"`
	}
}

type BoardResp struct {
	Board string `json:"board"`
}

type ApiServer struct {
	*mux.Router
	Address string
	ctrl    ifc.Controller
	log     *log.Logger
}

var _ ifc.ApiServer = &ApiServer{}

func NewApiServer(address string, ctrl ifc.Controller, logger *log.Logger) *ApiServer {
	s := &ApiServer{
		Address: address,
		ctrl:    ctrl,
		log:     logger.Named(LogName),
	}
	s.configureRouter()
	return s
}

// Handler wraps the router with request logging and panic recovery.
func (s *ApiServer) Handler() http.Handler {
	return handlers.LoggingHandler(s.log.Writer(),
		handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.log}))(s.Router))
}

// Run serves the API until ctx is done.
func (s *ApiServer) Run(ctx context.Context) error {
	s.log.Info("Starting API server: address: %s", s.Address)
	httpServer := &http.Server{
		Handler: s.Handler(),
		Addr:    s.Address,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.log.Info("Stopping API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	// swagger:operation GET /models models
	// ---
	// summary: list supported board models
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	subRouter.HandleFunc("/models", s.handleModels()).Methods("GET")
	// swagger:operation POST /board/init board init
	// ---
	// summary: reset a board and run its startup sequence
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "400":
	//     "$ref": "#/responses/badReq"
	subRouter.HandleFunc("/board/init", s.handleInitBoard()).Methods("POST")
	// swagger:operation POST /readout/{action:start|stop} readout start/stop
	// ---
	// summary: start or stop the readout of a board
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "400":
	//     "$ref": "#/responses/badReq"
	subRouter.HandleFunc("/readout/start", s.handleStartCapture()).Methods("POST")
	subRouter.HandleFunc("/readout/stop", s.handleStopCapture()).Methods("POST")
	// swagger:operation GET /state/board state
	// ---
	// summary: cached registers and latest run of a board
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "404":
	//     "$ref": "#/responses/badReq"
	subRouter.HandleFunc("/state/{board}", s.handleBoardState()).Methods("GET")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// statusOf maps command errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.As(err, &command.ErrConfig{}):
		return http.StatusBadRequest
	case errors.As(err, &board.ErrNotFound{}):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (s *ApiServer) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	s.log.Error("Request failed: %d %s", status, err)
	http.Error(w, err.Error(), status)
}

func (s *ApiServer) handleModels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.ctrl.ListModels())
	}
}

func (s *ApiServer) handleInitBoard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := command.BoardRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Debug("Handling init request: model: %s board: %s", req.Model, req.BoardIP)
		if err := s.ctrl.InitBoard(r.Context(), req); err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, &BoardResp{Board: req.BoardIP})
	}
}

func (s *ApiServer) handleStartCapture() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := command.CaptureRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Debug("Handling readout start request: model: %s board: %s trigger: %s",
			req.Model, req.BoardIP, req.TriggerMode)
		run, err := s.ctrl.StartCapture(r.Context(), req)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, run)
	}
}

func (s *ApiServer) handleStopCapture() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := command.BoardRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Debug("Handling readout stop request: model: %s board: %s", req.Model, req.BoardIP)
		run, err := s.ctrl.StopCapture(r.Context(), req)
		if err != nil {
			s.fail(w, err)
			return
		}
		// null body when no open run was known
		writeJSON(w, run)
	}
}

func (s *ApiServer) handleBoardState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		s.log.Debug("Handling state request: board: %s", vars["board"])
		state, err := s.ctrl.BoardState(vars["board"])
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, state)
	}
}

type recoveryLogger struct {
	log *log.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Critical("Recovered from panic: %v", v)
}
