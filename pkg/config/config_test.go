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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err := cfg.Load(); err != nil {
		t.Fatalf("could not load defaults: %+v", err)
	}
	if cfg.EndpointCheck != DefaultEndpointCheck || cfg.HostPort != DefaultHostPort {
		t.Fatalf("invalid defaults: %+v", cfg)
	}
	if cfg.Suppress["naludaq.UDP"] != "critical" {
		t.Fatalf("invalid default suppress map: %v", cfg.Suppress)
	}
}

func TestPersistLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nalu", ConfigFile)

	cfg := NewDefaultConfig()
	cfg.SetPath(path)
	cfg.EndpointCheck = "ipaddr"
	cfg.HostPolicy = "auto"
	cfg.HostPort = 5005
	cfg.Suppress["naludaq.state"] = "error"
	if err := cfg.Persist(false); err != nil {
		t.Fatalf("could not persist: %+v", err)
	}

	err := cfg.Persist(false)
	var exists ErrConfigFileExists
	if !errors.As(err, &exists) {
		t.Fatalf("expected file exists error, got %v", err)
	}
	if err := cfg.Persist(true); err != nil {
		t.Fatalf("could not overwrite: %+v", err)
	}

	got := NewDefaultConfig()
	got.SetPath(path)
	if err := got.Load(); err != nil {
		t.Fatalf("could not load: %+v", err)
	}
	if got.EndpointCheck != "ipaddr" || got.HostPolicy != "auto" || got.HostPort != 5005 {
		t.Fatalf("invalid config: %+v", got)
	}
	if got.Suppress["naludaq.state"] != "error" || got.Suppress["naludaq.UDP"] != "critical" {
		t.Fatalf("invalid suppress map: %v", got.Suppress)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("GONALU_ENDPOINT_CHECK", "ipaddr")
	t.Setenv("GONALU_HOST_PORT", "6000")

	cfg := NewDefaultConfig()
	cfg.SetPath(filepath.Join(t.TempDir(), ConfigFile))
	if err := cfg.Load(); err != nil {
		t.Fatalf("could not load: %+v", err)
	}
	if cfg.EndpointCheck != "ipaddr" {
		t.Fatalf("invalid endpoint check: %q", cfg.EndpointCheck)
	}
	if cfg.HostPort != 6000 {
		t.Fatalf("invalid host port: %d", cfg.HostPort)
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFile)
	if err := os.WriteFile(path, []byte("host_port: [1, 2\n"), 0644); err != nil {
		t.Fatalf("%+v", err)
	}
	cfg := NewDefaultConfig()
	cfg.SetPath(path)
	var readErr ErrConfigRead
	if err := cfg.Load(); !errors.As(err, &readErr) {
		t.Fatalf("expected read error, got %v", err)
	}
}
