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

package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"naluscientific.com/go-nalu/cmd/completion"
	"naluscientific.com/go-nalu/cmd/config"
	"naluscientific.com/go-nalu/cmd/control"
	"naluscientific.com/go-nalu/cmd/daq"
	"naluscientific.com/go-nalu/cmd/options"
	"naluscientific.com/go-nalu/cmd/plot"
	"naluscientific.com/go-nalu/cmd/remote"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	g := &options.Global{}
	cmd := &cobra.Command{
		Use:          "go-nalu",
		Short:        "Tool to configure and operate Nalu data acquisition boards over UDP",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.Init(cmd.ErrOrStderr())
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(daq.NewInitCommand(g))
	cmd.AddCommand(daq.NewStartCommand(g))
	cmd.AddCommand(daq.NewStopCommand(g))
	cmd.AddCommand(daq.NewModelsCommand(g))
	cmd.AddCommand(daq.NewStateCommand(g))
	cmd.AddCommand(control.NewServeCommand(g))
	cmd.AddCommand(remote.NewCommand(g))
	cmd.AddCommand(config.NewCommand(g))
	cmd.AddCommand(plot.NewCommand())
	cmd.AddCommand(completion.NewCommand())
	g.AddFlags(cmd.PersistentFlags())
	return cmd
}
