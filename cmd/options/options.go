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

package options

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"naluscientific.com/go-nalu/pkg/board"
	"naluscientific.com/go-nalu/pkg/command"
	"naluscientific.com/go-nalu/pkg/config"
	"naluscientific.com/go-nalu/pkg/endpoint"
	"naluscientific.com/go-nalu/pkg/log"
)

const (
	ConfigOptionName        = "config"
	LogLevelOptionName      = "log-level"
	DebugOptionName         = "debug"
	EndpointCheckOptionName = "endpoint-check"
	HostPolicyOptionName    = "host-policy"

	ModelOptionName        = "model"
	BoardIPOptionName      = "board_ip"
	HostIPOptionName       = "host_ip"
	ReadWindowOptionName   = "read_window"
	RecordWindowOptionName = "record_window"
	TriggerModeOptionName  = "trigger_mode"
	LookbackModeOptionName = "lookback_mode"

	// legacy spellings of the board scripts
	ReadoutWindowOptionName = "readout_window"
	LegacyHostOption        = "-host"
)

// Global holds the settings shared by every command. Config and Logger are
// ready once Init has run.
type Global struct {
	ConfigPath    string
	LogLevel      string
	Debug         bool
	EndpointCheck string
	HostPolicy    string

	Config *config.Config
	Logger *log.Logger
}

func (g *Global) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&g.ConfigPath, ConfigOptionName, config.DefaultConfigPath(), "Config file")
	fs.StringVar(&g.LogLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	fs.BoolVarP(&g.Debug, DebugOptionName, "d", false, "Debug logging. Subsystems listed in the suppress setting stay quiet")
	fs.StringVar(&g.EndpointCheck, EndpointCheckOptionName, "",
		fmt.Sprintf("ADDRESS:PORT validation. One of: %s", endpoint.HelpStrategies))
	fs.StringVar(&g.HostPolicy, HostPolicyOptionName, "",
		fmt.Sprintf("Host endpoint when --host_ip is not given. One of: %s", endpoint.HelpHostPolicies))
}

// Init loads the config file, applies the command line overrides and sets
// up logging to out.
func (g *Global) Init(out io.Writer) error {
	cfg := config.NewDefaultConfig()
	cfg.SetPath(g.ConfigPath)
	if err := cfg.Load(); err != nil {
		return err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if g.Debug {
		cfg.LogLevel = "debug"
	}
	if g.EndpointCheck != "" {
		cfg.EndpointCheck = g.EndpointCheck
	}
	if g.HostPolicy != "" {
		cfg.HostPolicy = g.HostPolicy
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return command.ErrConfig{What: "log level", Err: err}
	}
	suppress, err := log.ParseSuppress(cfg.Suppress)
	if err != nil {
		return command.ErrConfig{What: "log suppress", Err: err}
	}
	g.Config = cfg
	g.Logger = log.New(&log.Config{Out: out, Level: level, Suppress: suppress})
	return nil
}

// NewEnv returns the command environment; the caller closes it.
func (g *Global) NewEnv() (*command.Env, error) {
	return command.NewEnv(g.Config, g.Logger)
}

func AddBoardFlags(fs *pflag.FlagSet, req *command.BoardRequest) {
	fs.StringVarP(&req.Model, ModelOptionName, "m", "", "Board model. See: go-nalu models")
	fs.StringVarP(&req.BoardIP, BoardIPOptionName, "b", "", "Board IP in the format ADDRESS:PORT")
	fs.StringVar(&req.HostIP, HostIPOptionName, "",
		fmt.Sprintf("IP of the host computer in the format ADDRESS:PORT (also %s). Defaults to the host policy", LegacyHostOption))
}

// CaptureFlags keeps the raw window flags; pflag cannot tell an unset slice
// flag from an empty one.
type CaptureFlags struct {
	command.CaptureRequest
	fs *pflag.FlagSet
}

func AddCaptureFlags(fs *pflag.FlagSet) *CaptureFlags {
	f := &CaptureFlags{fs: fs}
	AddBoardFlags(fs, &f.BoardRequest)
	fs.IntSliceVar(&f.ReadWindow, ReadWindowOptionName, nil,
		fmt.Sprintf("Read window: num windows, lookback, write after trigger (also --%s)", ReadoutWindowOptionName))
	fs.IntSliceVar(&f.RecordWindow, RecordWindowOptionName, nil, "Record window: start window, length")
	fs.StringVarP(&f.TriggerMode, TriggerModeOptionName, "t", "",
		fmt.Sprintf("Trigger mode. One of: %s", board.HelpTriggerModes))
	fs.StringVarP(&f.LookbackMode, LookbackModeOptionName, "l", "",
		fmt.Sprintf("Lookback mode. One of: %s (default %s)", board.HelpLookbackModes, board.LookbackForced))
	fs.SetNormalizeFunc(NormalizeFlagName)
	return f
}

// Request returns the capture request, rejecting a missing or doubled window.
func (f *CaptureFlags) Request() (command.CaptureRequest, error) {
	req := f.CaptureRequest
	readSet := f.fs.Changed(ReadWindowOptionName)
	recordSet := f.fs.Changed(RecordWindowOptionName)
	switch {
	case readSet && recordSet:
		return req, command.ErrConfig{What: fmt.Sprintf("--%s and --%s are mutually exclusive",
			ReadWindowOptionName, RecordWindowOptionName)}
	case !readSet && !recordSet:
		return req, command.ErrConfig{What: fmt.Sprintf("one of --%s or --%s is required",
			ReadWindowOptionName, RecordWindowOptionName)}
	}
	if readSet && req.ReadWindow == nil {
		req.ReadWindow = []int{}
	}
	if recordSet && req.RecordWindow == nil {
		req.RecordWindow = []int{}
	}
	return req, nil
}

// NormalizeFlagName maps legacy flag spellings to their current names.
func NormalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == ReadoutWindowOptionName {
		name = ReadWindowOptionName
	}
	return pflag.NormalizedName(name)
}

var windowArity = map[string]int{
	"--" + ReadWindowOptionName:    3,
	"--" + ReadoutWindowOptionName: 3,
	"--" + RecordWindowOptionName:  2,
}

// LegacyArgs rewrites the argument spellings of the board scripts that pflag
// can not parse: the single dash -host (read by pflag as a group of short
// flags) becomes --host_ip, and space separated window values such as
// --read_window 8 4 2 become --read_window=8,4,2.
func LegacyArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		switch {
		case arg == LegacyHostOption:
			arg = "--" + HostIPOptionName
		case strings.HasPrefix(arg, LegacyHostOption+"="):
			arg = "--" + HostIPOptionName + strings.TrimPrefix(arg, LegacyHostOption)
		}
		if n, ok := windowArity[arg]; ok && i+n < len(args) && allInts(args[i+1:i+1+n]) {
			arg = arg + "=" + strings.Join(args[i+1:i+1+n], ",")
			i += n
		}
		out = append(out, arg)
	}
	return out
}

func allInts(args []string) bool {
	for _, arg := range args {
		if _, err := strconv.Atoi(arg); err != nil {
			return false
		}
	}
	return true
}
