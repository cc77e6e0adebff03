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
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
)

type LogLevel int

const (
	LogPrefix  = "[go-nalu] "
	HelpLevels = "Must be one of: critical, error, warning, info, debug."
	RootName   = "root"
)

const (
	CriticalLevel LogLevel = iota
	ErrorLevel
	WarningLevel
	InfoLevel
	DebugLevel
)

var levelNames = map[LogLevel]string{
	CriticalLevel: "critical",
	ErrorLevel:    "error",
	WarningLevel:  "warn",
	InfoLevel:     "info",
	DebugLevel:    "debug",
}

var levelMapping = map[string]LogLevel{
	"critical": CriticalLevel,
	"error":    ErrorLevel,
	"warning":  WarningLevel,
	"warn":     WarningLevel,
	"info":     InfoLevel,
	"debug":    DebugLevel,
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func ParseLevel(strLevel string) (LogLevel, error) {
	level, ok := levelMapping[strLevel]
	if !ok {
		return 0, errors.New("Wrong log level " + fmt.Sprintf("%q. ", strLevel) + HelpLevels)
	}
	return level, nil
}

// Config describes how a process logs. Suppress maps a subsystem name to the
// least severe level that subsystem is still allowed to emit.
type Config struct {
	Out      io.Writer
	Level    LogLevel
	Suppress map[string]LogLevel
}

func NewDefaultConfig() *Config {
	return &Config{
		Out:      os.Stderr,
		Level:    InfoLevel,
		Suppress: map[string]LogLevel{},
	}
}

// ParseSuppress converts subsystem=level pairs into a suppression map.
func ParseSuppress(m map[string]string) (map[string]LogLevel, error) {
	result := make(map[string]LogLevel, len(m))
	for name, strLevel := range m {
		level, err := ParseLevel(strLevel)
		if err != nil {
			return nil, fmt.Errorf("suppress %s: %w", name, err)
		}
		result[name] = level
	}
	return result, nil
}

type Logger struct {
	name  string
	level LogLevel
	cfg   *Config
	*log.Logger
}

// New creates the root logger for cfg.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		name:   RootName,
		level:  cfg.Level,
		cfg:    cfg,
		Logger: log.New(out, LogPrefix, log.LstdFlags),
	}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return New(&Config{Out: io.Discard, Level: CriticalLevel})
}

// Named returns a logger for a subsystem. The subsystem logs at the root
// level unless its suppression entry is less verbose.
func (l *Logger) Named(name string) *Logger {
	level := l.cfg.Level
	if min, ok := l.cfg.Suppress[name]; ok && min < level {
		level = min
	}
	return &Logger{
		name:   name,
		level:  level,
		cfg:    l.cfg,
		Logger: l.Logger,
	}
}

func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) Level() LogLevel {
	return l.level
}

// Suppressed lists the subsystem names with a suppression rule.
func (l *Logger) Suppressed() []string {
	var names []string
	for name := range l.cfg.Suppress {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Logger) output(level LogLevel, format string, v ...interface{}) {
	if l.level < level {
		return
	}
	l.Logger.Printf("%-16s [%-8s]: %s", l.name, level, fmt.Sprintf(format, v...))
}

func (l *Logger) Critical(format string, v ...interface{}) {
	l.output(CriticalLevel, format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.output(ErrorLevel, format, v...)
}

func (l *Logger) Warning(format string, v ...interface{}) {
	l.output(WarningLevel, format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.output(InfoLevel, format, v...)
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.output(DebugLevel, format, v...)
}

// Writer returns an io.Writer that logs each write at info level.
func (l *Logger) Writer() io.Writer {
	return writer{l}
}

type writer struct {
	l *Logger
}

func (w writer) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	w.l.Info("%s", msg)
	return len(p), nil
}
