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

	"naluscientific.com/go-nalu/pkg/command"
	"naluscientific.com/go-nalu/pkg/config"
	"naluscientific.com/go-nalu/pkg/log"
	"naluscientific.com/go-nalu/pkg/srv/control/ifc"
)

// ControlServer owns the command environment for the lifetime of the API.
type ControlServer struct {
	context.Context
	env *command.Env
	api ifc.ApiServer
}

var _ ifc.Controller = &command.Env{}

func NewControlServer(ctx context.Context, cfg *config.Config, logger *log.Logger) (*ControlServer, error) {
	logger.Named(LogName).Debug("Initializing control server with API address: %s", cfg.ApiAddress)
	env, err := command.NewEnv(cfg, logger)
	if err != nil {
		return nil, err
	}
	// open the state now so a locked database fails the start, not the first request
	if _, err := env.State(); err != nil {
		return nil, err
	}
	return &ControlServer{
		Context: ctx,
		env:     env,
		api:     NewApiServer(cfg.ApiAddress, env, logger),
	}, nil
}

func (s *ControlServer) Run() error {
	defer s.env.Close()
	return s.api.Run(s.Context)
}
