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

	"github.com/spf13/cobra"

	"naluscientific.com/go-nalu/cmd/options"
	"naluscientific.com/go-nalu/pkg/config"
	srvcontrol "naluscientific.com/go-nalu/pkg/srv/control"
)

const (
	AddressOptionName = "address"
)

func NewServeCommand(g *options.Global) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the control API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address != "" {
				g.Config.ApiAddress = address
			}
			s, err := srvcontrol.NewControlServer(cmd.Context(), g.Config, g.Logger)
			if err != nil {
				return err
			}
			if err := s.Run(); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Address to bind. E.g. %s", config.DefaultApiAddress))

	return cmd
}
