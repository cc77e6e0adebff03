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
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"naluscientific.com/go-nalu/cmd/options"
	"naluscientific.com/go-nalu/pkg/command"
	"naluscientific.com/go-nalu/pkg/config"
)

// run executes go-nalu with args against a config file in a temporary directory.
func run(t *testing.T, configPath string, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	root := NewRootCommand(&out)
	root.SetErr(&errOut)
	root.SetArgs(options.LegacyArgs(append(args, "--config", configPath)))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func testConfig(t *testing.T) string {
	dir := t.TempDir()
	t.Setenv("GONALU_DB_PATH", filepath.Join(dir, "state.db"))
	return filepath.Join(dir, "config.yaml")
}

func sinkBoard(t *testing.T) string {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	t.Cleanup(func() { conn.Close() })
	go func() {
		buf := make([]byte, 2048)
		for {
			if _, _, err := conn.ReadFromUDP(buf); err != nil {
				return
			}
		}
	}()
	return fmt.Sprintf("127.0.0.1:%d", conn.LocalAddr().(*net.UDPAddr).Port)
}

func TestModels(t *testing.T) {
	out, err := run(t, testConfig(t), "models")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	for _, name := range []string{"aardvarcv3", "asocv3", "hdsocv1_evalr2", "trbhm", "upac96"} {
		if !strings.Contains(out, name) {
			t.Fatalf("model %s not listed:\n%s", name, out)
		}
	}
}

func TestConfigErrors(t *testing.T) {
	cfg := testConfig(t)
	for _, tc := range []struct {
		name string
		args []string
	}{
		{"board-without-port", []string{"init-board", "-m", "asocv3", "-b", "192.168.1.59"}},
		{"host-octet", []string{"init-board", "-m", "asocv3", "-b", "192.168.1.59:4660", "-host", "300.1.1.1:4660"}},
		{"unknown-model", []string{"stop-capture", "-m", "asoc", "-b", "192.168.1.59:4660", "--host_ip", "192.168.1.1:4660"}},
		{"both-windows", []string{"start-capture", "-m", "asocv3", "-b", "192.168.1.59:4660", "-t", "ext",
			"--read_window", "8", "4", "2", "--record_window", "0", "8"}},
		{"no-window", []string{"start-capture", "-m", "asocv3", "-b", "192.168.1.59:4660", "-t", "ext"}},
		{"endpoint-check", []string{"init-board", "-m", "asocv3", "-b", "192.168.1.59:4660", "--endpoint-check", "dns"}},
		{"host-policy", []string{"init-board", "-m", "asocv3", "-b", "192.168.1.59:4660", "--host-policy", "nearest"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, cfg, tc.args...)
			if !errors.As(err, &command.ErrConfig{}) {
				t.Fatalf("expected config error, got %v", err)
			}
		})
	}
	if _, err := os.Stat(os.Getenv("GONALU_DB_PATH")); !os.IsNotExist(err) {
		t.Fatalf("state database touched by rejected commands: %v", err)
	}
}

func TestRequiredFlags(t *testing.T) {
	cfg := testConfig(t)
	if _, err := run(t, cfg, "start-capture", "-m", "asocv3", "-b", "192.168.1.59:4660", "--read_window", "8", "4", "2"); err == nil {
		t.Fatalf("trigger mode is required")
	}
	if _, err := run(t, cfg, "init-board", "-m", "asocv3"); err == nil {
		t.Fatalf("board ip is required")
	}
}

func TestCaptureCommands(t *testing.T) {
	cfg := testConfig(t)
	boardIP := sinkBoard(t)
	common := []string{"-m", "hdsocv1_evalr2", "-b", boardIP, "-host", "127.0.0.1:0", "--endpoint-check", "ipaddr"}

	if _, err := run(t, cfg, append([]string{"init-board", "-d"}, common...)...); err != nil {
		t.Fatalf("init-board: %+v", err)
	}
	out, err := run(t, cfg, append([]string{"start-capture", "--readout_window", "8", "4", "2", "-t", "self", "-l", "trig"}, common...)...)
	if err != nil {
		t.Fatalf("start-capture: %+v", err)
	}
	if !strings.Contains(out, "started on "+boardIP) {
		t.Fatalf("invalid output: %s", out)
	}

	out, err = run(t, cfg, "state", "-b", boardIP, "--endpoint-check", "ipaddr")
	if err != nil {
		t.Fatalf("state: %+v", err)
	}
	for _, want := range []string{"trigger_mode: self", "lookback_mode: trig", "0x00b0"} {
		if !strings.Contains(out, want) {
			t.Fatalf("%q missing from state:\n%s", want, out)
		}
	}

	out, err = run(t, cfg, append([]string{"stop-capture"}, common...)...)
	if err != nil {
		t.Fatalf("stop-capture: %+v", err)
	}
	if !strings.Contains(out, "stopped on "+boardIP) {
		t.Fatalf("invalid output: %s", out)
	}
}

func TestConfigCommands(t *testing.T) {
	cfg := testConfig(t)
	if _, err := run(t, cfg, "config", "init", "--log-level", "debug"); err != nil {
		t.Fatalf("%+v", err)
	}
	if _, err := run(t, cfg, "config", "init"); !errors.As(err, &config.ErrConfigFileExists{}) {
		t.Fatalf("expected config file exists error, got %v", err)
	}
	out, err := run(t, cfg, "config", "show")
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !strings.Contains(out, "log_level: debug") || !strings.Contains(out, "naludaq.UDP: critical") {
		t.Fatalf("invalid config:\n%s", out)
	}
}

func TestPlotColorBar(t *testing.T) {
	output := filepath.Join(t.TempDir(), "cmap.png")
	if _, err := run(t, testConfig(t), "plot", "colorbar", "--cmap", "blue_red", "-o", output); err != nil {
		t.Fatalf("%+v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("%+v", err)
	}
	if _, err := run(t, testConfig(t), "plot", "colorbar", "--font-family", "cursive", "-o", output); err == nil {
		t.Fatalf("expected an error for an unknown font family")
	}
}

func TestCompletion(t *testing.T) {
	cfg := testConfig(t)
	for _, tc := range []struct {
		shell string
		want  string
	}{
		{"", "__start_go-nalu"},
		{"bash", "__start_go-nalu"},
		{"zsh", "compdef _go-nalu"},
		{"fish", "complete -c go-nalu"},
	} {
		t.Run("shell-"+tc.shell, func(t *testing.T) {
			args := []string{"completion"}
			if tc.shell != "" {
				args = append(args, tc.shell)
			}
			out, err := run(t, cfg, args...)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if !strings.Contains(out, tc.want) {
				t.Fatalf("%q missing from completion script", tc.want)
			}
		})
	}
	if _, err := run(t, cfg, "completion", "tcsh"); err == nil {
		t.Fatalf("expected an error for an unsupported shell")
	}
}
