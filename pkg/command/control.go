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
	"sync"

	"naluscientific.com/go-nalu/pkg/board"
	"naluscientific.com/go-nalu/pkg/config"
	"naluscientific.com/go-nalu/pkg/endpoint"
	"naluscientific.com/go-nalu/pkg/log"
	"naluscientific.com/go-nalu/pkg/models"
)

// Env holds what every command needs: settings, the model registry, the
// endpoint validator and the register state. One Env serves any number of
// commands; board sessions are serialized since each one binds the host
// endpoint.
type Env struct {
	Config    *config.Config
	Models    *models.Registry
	Validator *endpoint.Validator
	Logger    *log.Logger
	log       *log.Logger

	session   sync.Mutex
	stateOnce sync.Once
	state     *board.State
	stateErr  error
}

// NewEnv checks the settings of cfg that do not depend on a request.
func NewEnv(cfg *config.Config, logger *log.Logger) (*Env, error) {
	strategy, err := endpoint.ParseStrategy(cfg.EndpointCheck)
	if err != nil {
		return nil, ErrConfig{What: "endpoint check", Err: err}
	}
	registry, err := models.Load(cfg.ModelsFile)
	if err != nil {
		return nil, ErrConfig{What: "models", Err: err}
	}
	return &Env{
		Config:    cfg,
		Models:    registry,
		Validator: endpoint.NewValidator(strategy),
		Logger:    logger,
		log:       logger.Named(LogName),
	}, nil
}

// State opens the state database on first use. It returns nil when no
// database path is configured.
func (e *Env) State() (*board.State, error) {
	e.stateOnce.Do(func() {
		if e.Config.DBPath == "" {
			return
		}
		e.state, e.stateErr = board.OpenState(e.Config.DBPath)
	})
	return e.state, e.stateErr
}

func (e *Env) Close() error {
	if e.state != nil {
		return e.state.Close()
	}
	return nil
}

// withBoard connects to the target board, calls fn and disconnects, whatever
// fn returns.
func (e *Env) withBoard(ctx context.Context, t *target, fn func(b *board.Board, state *board.State) error) (err error) {
	e.session.Lock()
	defer e.session.Unlock()

	state, err := e.State()
	if errors.Is(err, board.ErrStateLocked) {
		e.log.Warning("%s, board registers and runs will not be recorded", err)
		state = nil
	} else if err != nil {
		return err
	}
	b := board.New(t.model, e.Logger, state)
	if err := b.ConnectUDP(ctx, t.boardEP, t.hostEP); err != nil {
		return err
	}
	defer func() {
		if derr := b.Disconnect(); err == nil {
			err = derr
		}
	}()
	return fn(b, state)
}

// ListModels returns the registry models sorted by name.
func (e *Env) ListModels() []*models.Model {
	return e.Models.List()
}
