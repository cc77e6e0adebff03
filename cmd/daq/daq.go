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

package daq

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"naluscientific.com/go-nalu/cmd/options"
	"naluscientific.com/go-nalu/pkg/board"
	"naluscientific.com/go-nalu/pkg/command"
)

const (
	initExample = `
Reset a board and bring it to its default state
# go-nalu init-board -m aardvarcv3 -b 192.168.1.59:4660 --host_ip 192.168.1.1:4660
`
	startExample = `
Read 8 windows with a lookback of 4 on external trigger
# go-nalu start-capture -m aardvarcv3 -b 192.168.1.59:4660 --read_window 8 4 2 -t ext

Record 16 windows starting at window 0 on self trigger
# go-nalu start-capture -m hdsocv1_evalr2 -b 192.168.1.59:4660 --record_window 0 16 -t self -l trig
`
)

func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		cmd.MarkFlagRequired(name)
	}
}

func NewInitCommand(g *options.Global) *cobra.Command {
	req := command.BoardRequest{}
	cmd := &cobra.Command{
		Use:     "init-board",
		Short:   "Init a board to a default state",
		Example: initExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.NewEnv()
			if err != nil {
				return err
			}
			defer env.Close()
			return env.InitBoard(cmd.Context(), req)
		},
	}
	options.AddBoardFlags(cmd.Flags(), &req)
	markRequired(cmd, options.ModelOptionName, options.BoardIPOptionName)
	return cmd
}

func NewStartCommand(g *options.Global) *cobra.Command {
	var flags *options.CaptureFlags
	cmd := &cobra.Command{
		Use:     "start-capture",
		Short:   "Start data capture for a board",
		Example: startExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.Request()
			if err != nil {
				return err
			}
			env, err := g.NewEnv()
			if err != nil {
				return err
			}
			defer env.Close()
			run, err := env.StartCapture(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s started on %s\n", run.ID, run.Board)
			return nil
		},
	}
	flags = options.AddCaptureFlags(cmd.Flags())
	markRequired(cmd, options.ModelOptionName, options.BoardIPOptionName, options.TriggerModeOptionName)
	return cmd
}

func NewStopCommand(g *options.Global) *cobra.Command {
	req := command.BoardRequest{}
	cmd := &cobra.Command{
		Use:   "stop-capture",
		Short: "Stop data capture for a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.NewEnv()
			if err != nil {
				return err
			}
			defer env.Close()
			run, err := env.StopCapture(cmd.Context(), req)
			if err != nil {
				return err
			}
			printStopped(cmd, run)
			return nil
		},
	}
	options.AddBoardFlags(cmd.Flags(), &req)
	markRequired(cmd, options.ModelOptionName, options.BoardIPOptionName)
	return cmd
}

func printStopped(cmd *cobra.Command, run *board.Run) {
	if run == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Readout stopped, no open run was recorded")
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Run %s stopped on %s after %s\n",
		run.ID, run.Board, run.Stopped.Sub(run.Started).Round(time.Millisecond))
}

func NewModelsCommand(g *options.Global) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported board models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.NewEnv()
			if err != nil {
				return err
			}
			defer env.Close()
			for _, m := range env.ListModels() {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}

func NewStateCommand(g *options.Global) *cobra.Command {
	var boardIP string
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the cached registers and latest run of a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.NewEnv()
			if err != nil {
				return err
			}
			defer env.Close()
			state, err := env.BoardState(boardIP)
			if err != nil {
				return err
			}
			return PrintYAML(cmd, state)
		},
	}
	cmd.Flags().StringVarP(&boardIP, options.BoardIPOptionName, "b", "", "Board IP in the format ADDRESS:PORT")
	markRequired(cmd, options.BoardIPOptionName)
	return cmd
}

func PrintYAML(cmd *cobra.Command, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
