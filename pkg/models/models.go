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

// Package models is the registry of supported board models.
package models

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"
)

//go:embed models.yaml
var builtin []byte

type RegWrite struct {
	Addr  uint16 `json:"addr"`
	Value uint16 `json:"value"`
}

// Registers holds the addresses the board controllers program.
type Registers struct {
	Reset          uint16 `json:"reset"`
	ReadoutCtrl    uint16 `json:"readout_ctrl"`
	TriggerMode    uint16 `json:"trigger_mode"`
	LookbackMode   uint16 `json:"lookback_mode"`
	Windows        uint16 `json:"windows"`
	Lookback       uint16 `json:"lookback"`
	WriteAfterTrig uint16 `json:"write_after_trig"`
	RecordStart    uint16 `json:"record_start"`
	RecordLength   uint16 `json:"record_length"`
}

type Model struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Channels    int        `json:"channels"`
	Windows     int        `json:"windows"`
	Samples     int        `json:"samples"`
	Registers   Registers  `json:"registers"`
	Startup     []RegWrite `json:"startup,omitempty"`
}

func (m *Model) String() string {
	return fmt.Sprintf("%-16s channels: %3d windows: %3d samples: %3d  %s",
		m.Name, m.Channels, m.Windows, m.Samples, m.Description)
}

type Registry struct {
	models map[string]*Model
}

// Default returns the registry of built-in models.
func Default() *Registry {
	r, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in model registry: %s", err))
	}
	return r
}

// Parse reads a YAML list of models.
func Parse(data []byte) (*Registry, error) {
	var list []*Model
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	r := &Registry{models: make(map[string]*Model)}
	for _, m := range list {
		if err := r.Add(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Load returns the built-in registry extended by the models in path.
// Models in path replace built-in models with the same name.
func Load(path string) (*Registry, error) {
	r := Default()
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	extra, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("models file %s: %w", path, err)
	}
	for _, m := range extra.models {
		r.models[m.Name] = m
	}
	return r, nil
}

func (r *Registry) Add(m *Model) error {
	if m.Name == "" {
		return ErrInvalidModel{What: "model without a name"}
	}
	if m.Windows <= 0 {
		return ErrInvalidModel{What: fmt.Sprintf("model %s: windows must be positive", m.Name)}
	}
	if _, ok := r.models[m.Name]; ok {
		return ErrInvalidModel{What: fmt.Sprintf("duplicate model %s", m.Name)}
	}
	r.models[m.Name] = m
	return nil
}

func (r *Registry) Get(name string) (*Model, error) {
	m, ok := r.models[name]
	if !ok {
		return nil, ErrUnknownModel{Name: name, Available: r.Names()}
	}
	return m, nil
}

// List returns the models sorted by name.
func (r *Registry) List() []*Model {
	list := make([]*Model, 0, len(r.models))
	for _, name := range r.Names() {
		list = append(list, r.models[name])
	}
	return list
}

// Names returns the sorted model names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type ErrUnknownModel struct {
	Name      string
	Available []string
}

func (e ErrUnknownModel) Error() string {
	return fmt.Sprintf("Unknown board model %q. Must be one of: %s", e.Name, strings.Join(e.Available, ", "))
}

type ErrInvalidModel struct {
	What string
}

func (e ErrInvalidModel) Error() string {
	return fmt.Sprintf("Invalid model definition: %s", e.What)
}
