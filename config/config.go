// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cflogproc/load/batch"
	"cflogproc/servicelog"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	ActionBatch   = "batch"
	ActionParse   = "parse"
	ActionHelp    = "help"
	ActionVersion = "version"

	DefaultTimeZone = "UTC"

	OutputFormatJSON    = "json"
	OutputFormatMsgpack = "msgpack"
)

// Main describes cflogproc's configuration
type Main struct {
	LogFiles      *batch.Conf              `json:"logFiles" yaml:"logFiles"`
	GeoIPDbPath   string                   `json:"geoIpDbPath" yaml:"geoIpDbPath"`
	LogPath       string                   `json:"logPath" yaml:"logPath"`
	LogLevel      string                   `json:"logLevel" yaml:"logLevel"`
	TimeZone      string                   `json:"timeZone" yaml:"timeZone"`
	ExcludeIPList servicelog.ExcludeIPList `json:"excludeIpList" yaml:"excludeIpList"`
	ScriptPath    string                   `json:"scriptPath" yaml:"scriptPath"`
	Output        string                   `json:"output" yaml:"output"`
}

// TimezoneLocation returns the configured location. Validate must be
// called first as it also checks the time zone value.
func (c *Main) TimezoneLocation() *time.Location {
	loc, err := servicelog.LoadTimezone(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Main) HasGeoIP() bool {
	return c.GeoIPDbPath != ""
}

// Validate checks for some essential config properties
// and fills in default values where possible.
func Validate(conf *Main, action string) error {
	if conf.GeoIPDbPath != "" {
		isFile, err := fs.IsFile(conf.GeoIPDbPath)
		if err != nil {
			return fmt.Errorf("failed to validate geoIpDbPath: %w", err)
		}
		if !isFile {
			return fmt.Errorf("invalid geoIpDbPath: '%s'", conf.GeoIPDbPath)
		}
	}
	if action == ActionBatch && conf.LogFiles == nil {
		return errors.New("missing configuration data for the `batch` action")
	}
	if conf.LogFiles != nil {
		if err := conf.LogFiles.Validate(); err != nil {
			return fmt.Errorf("logFiles validation error: %w", err)
		}
	}
	if conf.ScriptPath != "" {
		isFile, err := fs.IsFile(conf.ScriptPath)
		if err != nil || !isFile {
			return fmt.Errorf("invalid scriptPath: '%s'", conf.ScriptPath)
		}
	}
	if conf.TimeZone == "" {
		conf.TimeZone = DefaultTimeZone
		log.Warn().Str("timezone", conf.TimeZone).
			Msg("timeZone not specified, using default")
	}
	if _, err := servicelog.LoadTimezone(conf.TimeZone); err != nil {
		return fmt.Errorf("invalid timeZone: %w", err)
	}
	switch conf.Output {
	case "":
		conf.Output = OutputFormatJSON
	case OutputFormatJSON, OutputFormatMsgpack:
	default:
		return fmt.Errorf("unsupported output format '%s'", conf.Output)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load loads main configuration from a JSON or YAML file
// (the format is determined by the file suffix)
func Load(path string) (*Main, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	var conf Main
	if isYAML(path) {
		err = yaml.Unmarshal(rawData, &conf)

	} else {
		err = json.Unmarshal(rawData, &conf)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &conf, nil
}
