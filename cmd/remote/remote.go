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

package remote

import (
	"fmt"

	"github.com/spf13/cobra"

	"naluscientific.com/go-nalu/cmd/daq"
	"naluscientific.com/go-nalu/cmd/options"
	"naluscientific.com/go-nalu/pkg/command"
	"naluscientific.com/go-nalu/pkg/config"
)

const (
	AddressOptionName = "address"
)

// NewCommand groups the commands sent to a go-nalu serve instance.
func NewCommand(g *options.Global) *cobra.Command {
	var address string
	client := func() *command.ApiClient {
		if address == "" {
			address = g.Config.ApiAddress
		}
		return command.NewApiClient(address)
	}
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Run board commands through the control API server",
	}
	cmd.PersistentFlags().StringVar(&address, AddressOptionName, "",
		fmt.Sprintf("API server address. E.g. %s", config.DefaultApiAddress))
	cmd.AddCommand(newInitCommand(client))
	cmd.AddCommand(newStartCommand(client))
	cmd.AddCommand(newStopCommand(client))
	cmd.AddCommand(newStateCommand(client))
	return cmd
}

func newInitCommand(client func() *command.ApiClient) *cobra.Command {
	req := command.BoardRequest{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Init a board to a default state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().InitBoard(req)
		},
	}
	options.AddBoardFlags(cmd.Flags(), &req)
	cmd.MarkFlagRequired(options.ModelOptionName)
	cmd.MarkFlagRequired(options.BoardIPOptionName)
	return cmd
}

func newStartCommand(client func() *command.ApiClient) *cobra.Command {
	var flags *options.CaptureFlags
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start data capture for a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.Request()
			if err != nil {
				return err
			}
			run, err := client().StartCapture(req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s started on %s\n", run.ID, run.Board)
			return nil
		},
	}
	flags = options.AddCaptureFlags(cmd.Flags())
	cmd.MarkFlagRequired(options.ModelOptionName)
	cmd.MarkFlagRequired(options.BoardIPOptionName)
	cmd.MarkFlagRequired(options.TriggerModeOptionName)
	return cmd
}

func newStopCommand(client func() *command.ApiClient) *cobra.Command {
	req := command.BoardRequest{}
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop data capture for a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := client().StopCapture(req)
			if err != nil {
				return err
			}
			if run == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Readout stopped, no open run was recorded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s stopped on %s\n", run.ID, run.Board)
			return nil
		},
	}
	options.AddBoardFlags(cmd.Flags(), &req)
	cmd.MarkFlagRequired(options.ModelOptionName)
	cmd.MarkFlagRequired(options.BoardIPOptionName)
	return cmd
}

func newStateCommand(client func() *command.ApiClient) *cobra.Command {
	var boardIP string
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the registers and latest run the server knows for a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := client().BoardState(boardIP)
			if err != nil {
				return err
			}
			return daq.PrintYAML(cmd, state)
		},
	}
	cmd.Flags().StringVarP(&boardIP, options.BoardIPOptionName, "b", "", "Board IP in the format ADDRESS:PORT")
	cmd.MarkFlagRequired(options.BoardIPOptionName)
	return cmd
}
