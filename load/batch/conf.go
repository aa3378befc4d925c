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

package batch

import (
	"errors"
	"path/filepath"
)

const (
	DefaultFilePattern = "*"
)

// Conf represents a configuration for a batch processing of CloudFront
// access log files
type Conf struct {

	// SrcPath is either a directory containing log files
	// or a path to a single log file
	SrcPath string `json:"srcPath" yaml:"srcPath"`

	// Pattern is a glob pattern files within SrcPath must match
	// (e.g. `E2ABCDEF.*.gz`). Default is `*`.
	Pattern string `json:"pattern" yaml:"pattern"`

	WorklogPath string `json:"worklogPath" yaml:"worklogPath"`
}

func (conf *Conf) Validate() error {
	if conf.SrcPath == "" {
		return errors.New("missing srcPath")
	}
	if conf.WorklogPath == "" {
		return errors.New("missing worklogPath")
	}
	if conf.Pattern == "" {
		conf.Pattern = DefaultFilePattern
	}
	if _, err := filepath.Match(conf.Pattern, ""); err != nil {
		return errors.New("invalid file pattern")
	}
	return nil
}
