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
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/czcorpus/cnc-gokit/fs"
)

// ListLogFiles returns a sorted list of log files matching the configuration.
// CloudFront embeds `YYYY-MM-DD-HH` into the names of its files so the
// order by name is also a chronological one.
func ListLogFiles(conf *Conf) ([]string, error) {
	isFile, err := fs.IsFile(conf.SrcPath)
	if err != nil {
		return []string{}, fmt.Errorf("failed to list log files: %w", err)
	}
	if isFile {
		return []string{conf.SrcPath}, nil
	}
	pattern := conf.Pattern
	if pattern == "" {
		pattern = DefaultFilePattern
	}
	items, err := os.ReadDir(conf.SrcPath)
	if err != nil {
		return []string{}, fmt.Errorf("failed to list log files: %w", err)
	}
	ans := make([]string, 0, len(items))
	for _, item := range items {
		if !item.Type().IsRegular() {
			continue
		}
		matches, err := filepath.Match(pattern, item.Name())
		if err != nil {
			return []string{}, fmt.Errorf("failed to list log files: %w", err)
		}
		if matches {
			ans = append(ans, filepath.Join(conf.SrcPath, item.Name()))
		}
	}
	sort.Strings(ans)
	return ans, nil
}
