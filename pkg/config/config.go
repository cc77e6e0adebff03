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
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"
)

type Config struct {
	LogLevel string `json:"log_level" mapstructure:"log_level"`
	// Suppress maps a logging subsystem to the least severe level it may emit
	Suppress      map[string]string `json:"suppress,omitempty" mapstructure:"suppress"`
	EndpointCheck string            `json:"endpoint_check" mapstructure:"endpoint_check"`
	// HostPolicy overrides the per-command default when set: loopback or auto
	HostPolicy string `json:"host_policy,omitempty" mapstructure:"host_policy"`
	HostPort   uint16 `json:"host_port" mapstructure:"host_port"`
	DBPath     string `json:"db_path" mapstructure:"db_path"`
	ModelsFile string `json:"models_file,omitempty" mapstructure:"models_file"`
	ApiAddress string `json:"api_address" mapstructure:"api_address"`
	filepath   string
}

func DefaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), ConfigFile)
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir)
}

func NewDefaultConfig() *Config {
	suppress := make(map[string]string, len(DefaultSuppress))
	for k, v := range DefaultSuppress {
		suppress[k] = v
	}
	return &Config{
		LogLevel:      DefaultLogLevel,
		Suppress:      suppress,
		EndpointCheck: DefaultEndpointCheck,
		HostPort:      DefaultHostPort,
		DBPath:        filepath.Join(defaultConfigDir(), DBFile),
		ApiAddress:    DefaultApiAddress,
		filepath:      DefaultConfigPath(),
	}
}

// Path returns the config file location.
func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

// Load reads the config file, if any, and applies GONALU_* environment overrides
// to the scalar settings.
func (c *Config) Load() error {
	if data, err := os.ReadFile(c.filepath); err == nil {
		if err := yaml.Unmarshal(data, c); err != nil {
			return ErrConfigRead{Path: c.filepath, Err: err}
		}
	} else if !os.IsNotExist(err) {
		return ErrConfigRead{Path: c.filepath, Err: err}
	}

	// viper keys are case insensitive and dot separated, so the suppress map
	// (keyed by dotted subsystem names) stays out of it
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("endpoint_check", c.EndpointCheck)
	v.SetDefault("host_policy", c.HostPolicy)
	v.SetDefault("host_port", c.HostPort)
	v.SetDefault("db_path", c.DBPath)
	v.SetDefault("models_file", c.ModelsFile)
	v.SetDefault("api_address", c.ApiAddress)
	return v.Unmarshal(c)
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
