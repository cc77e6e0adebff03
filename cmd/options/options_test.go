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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/pflag"

	"naluscientific.com/go-nalu/pkg/command"
	"naluscientific.com/go-nalu/pkg/log"
)

func TestLegacyArgs(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "host",
			in:   []string{"init-board", "-host", "10.0.0.1:4660", "-b", "10.0.0.5:4660"},
			want: []string{"init-board", "--host_ip", "10.0.0.1:4660", "-b", "10.0.0.5:4660"},
		},
		{
			name: "host-equals",
			in:   []string{"-host=10.0.0.1:4660"},
			want: []string{"--host_ip=10.0.0.1:4660"},
		},
		{
			name: "readout-window",
			in:   []string{"--readout_window", "8", "4", "2", "-t", "ext"},
			want: []string{"--readout_window=8,4,2", "-t", "ext"},
		},
		{
			name: "record-window",
			in:   []string{"--record_window", "0", "16"},
			want: []string{"--record_window=0,16"},
		},
		{
			name: "comma-window",
			in:   []string{"--read_window", "8,4,2"},
			want: []string{"--read_window", "8,4,2"},
		},
		{
			name: "short-window",
			in:   []string{"--read_window", "8", "4"},
			want: []string{"--read_window", "8", "4"},
		},
		{
			name: "after-dashes",
			in:   []string{"--", "-host"},
			want: []string{"--", "-host"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := LegacyArgs(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got=%q, want=%q", got, tc.want)
			}
		})
	}
}

func TestCaptureFlags(t *testing.T) {
	for _, tc := range []struct {
		name   string
		args   []string
		err    bool
		read   []int
		record []int
	}{
		{name: "read", args: []string{"--read_window=8,4,2"}, read: []int{8, 4, 2}},
		{name: "readout-alias", args: []string{"--readout_window=8,4,2"}, read: []int{8, 4, 2}},
		{name: "record", args: []string{"--record_window=0,16"}, record: []int{0, 16}},
		{name: "neither", args: []string{}, err: true},
		{name: "both", args: []string{"--read_window=8,4,2", "--record_window=0,16"}, err: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fs := pflag.NewFlagSet(tc.name, pflag.ContinueOnError)
			flags := AddCaptureFlags(fs)
			args := append([]string{"-m", "asocv3", "-b", "10.0.0.5:4660", "-t", "ext"}, tc.args...)
			if err := fs.Parse(args); err != nil {
				t.Fatalf("%+v", err)
			}
			req, err := flags.Request()
			if tc.err {
				if !errors.As(err, &command.ErrConfig{}) {
					t.Fatalf("expected config error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if !reflect.DeepEqual(req.ReadWindow, tc.read) || !reflect.DeepEqual(req.RecordWindow, tc.record) {
				t.Fatalf("invalid windows: %v %v", req.ReadWindow, req.RecordWindow)
			}
			if req.Model != "asocv3" || req.BoardIP != "10.0.0.5:4660" || req.TriggerMode != "ext" {
				t.Fatalf("invalid request: %+v", req)
			}
		})
	}
}

func TestGlobalInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("log_level: warning\nsuppress:\n  naludaq.board: error\nendpoint_check: ipaddr\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("%+v", err)
	}

	g := &Global{ConfigPath: path}
	var out bytes.Buffer
	if err := g.Init(&out); err != nil {
		t.Fatalf("%+v", err)
	}
	if g.Config.EndpointCheck != "ipaddr" || g.Logger.Level() != log.WarningLevel {
		t.Fatalf("config file not applied: %+v", g.Config)
	}

	g = &Global{ConfigPath: path, Debug: true, EndpointCheck: "pattern", HostPolicy: "auto"}
	if err := g.Init(&out); err != nil {
		t.Fatalf("%+v", err)
	}
	if g.Logger.Level() != log.DebugLevel || g.Config.EndpointCheck != "pattern" || g.Config.HostPolicy != "auto" {
		t.Fatalf("flags not applied: %+v", g.Config)
	}
	if level := g.Logger.Named("naludaq.board").Level(); level != log.ErrorLevel {
		t.Fatalf("subsystem not suppressed: %s", level)
	}
	if level := g.Logger.Named("naludaq.UDP").Level(); level != log.CriticalLevel {
		t.Fatalf("default suppression lost: %s", level)
	}

	g = &Global{ConfigPath: path, LogLevel: "loud"}
	if err := g.Init(&out); !errors.As(err, &command.ErrConfig{}) {
		t.Fatalf("expected config error, got %v", err)
	}
}
