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

package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	buf := new(bytes.Buffer)
	l := New(&Config{Out: buf, Level: WarningLevel})
	l.Debug("debug message")
	l.Info("info message")
	l.Warning("warning message")
	l.Error("error %d", 42)

	out := buf.String()
	for _, want := range []string{"warning message", "error 42", LogPrefix, "[warn    ]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
	for _, skip := range []string{"debug message", "info message"} {
		if strings.Contains(out, skip) {
			t.Fatalf("unexpected %q in output:\n%s", skip, out)
		}
	}
}

func TestSuppress(t *testing.T) {
	buf := new(bytes.Buffer)
	suppress, err := ParseSuppress(map[string]string{"naludaq.UDP": "critical"})
	if err != nil {
		t.Fatalf("could not parse suppress map: %+v", err)
	}
	root := New(&Config{Out: buf, Level: DebugLevel, Suppress: suppress})

	udp := root.Named("naludaq.UDP")
	if udp.Level() != CriticalLevel {
		t.Fatalf("invalid level: %v", udp.Level())
	}
	udp.Error("dropped")
	udp.Critical("socket gone")

	board := root.Named("naludaq.board")
	if board.Level() != DebugLevel {
		t.Fatalf("invalid level: %v", board.Level())
	}
	board.Debug("reset")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("suppressed subsystem leaked:\n%s", out)
	}
	for _, want := range []string{"socket gone", "naludaq.board", "reset"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
	if got := root.Suppressed(); len(got) != 1 || got[0] != "naludaq.UDP" {
		t.Fatalf("invalid suppressed list: %v", got)
	}
}

func TestSuppressNeverRaisesVerbosity(t *testing.T) {
	l := New(&Config{Level: InfoLevel, Suppress: map[string]LogLevel{"noisy": DebugLevel}})
	if got := l.Named("noisy").Level(); got != InfoLevel {
		t.Fatalf("invalid level: %v", got)
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"critical", "error", "warning", "info", "debug"} {
		if _, err := ParseLevel(name); err != nil {
			t.Fatalf("could not parse %q: %+v", name, err)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Fatalf("expected an error")
	}
	if _, err := ParseSuppress(map[string]string{"x": "loud"}); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestWriter(t *testing.T) {
	buf := new(bytes.Buffer)
	l := New(&Config{Out: buf, Level: InfoLevel}).Named("naludaq.api")
	if _, err := l.Writer().Write([]byte("GET /api/models 200\n")); err != nil {
		t.Fatalf("%+v", err)
	}
	if !strings.Contains(buf.String(), "GET /api/models 200") {
		t.Fatalf("missing line in output: %q", buf.String())
	}
}
