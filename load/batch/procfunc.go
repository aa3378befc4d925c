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

	"cflogproc/save"
	"cflogproc/servicelog"

	"github.com/rs/zerolog/log"
)

// LogFileProcFunc is a function for batch processing of file-based logs
type LogFileProcFunc = func(conf *Conf) (Stats, error)

// CreateLogFileProcFunc joins a file processor, a worklog, an output channel
// and the writer's confirmation channel and returns a function processing all
// the configured files. Files already found in the worklog are skipped. A file
// is stored to the worklog only once all its records are confirmed as written
// without errors. The function does not close the output channel.
func CreateLogFileProcFunc(
	fp *FileProcessor,
	worklog *Worklog,
	out chan<- *servicelog.BoundOutputRecord,
	confirm <-chan save.ConfirmMsg,
) LogFileProcFunc {
	tracker := newWriteTracker(confirm)
	return func(conf *Conf) (Stats, error) {
		var total Stats
		var numFailedFiles int
		files, err := ListLogFiles(conf)
		if err != nil {
			return total, err
		}
		log.Info().Str("srcPath", conf.SrcPath).Msgf("found %d file(s) to process", len(files))
		for _, file := range files {
			done, err := worklog.IsProcessed(file)
			if err != nil {
				return total, err
			}
			if done {
				log.Debug().Str("file", file).Msg("file already processed, skipping")
				continue
			}
			base := tracker.snapshot(file)
			stats, err := fp.ProcessFile(file, out)
			numFailed, werr := tracker.waitFor(file, base, stats.NumWritten)
			stats.NumWriteErrors = numFailed
			total = total.Add(stats)
			if werr != nil {
				return total, fmt.Errorf("failed to process %s: %w", file, werr)
			}
			if err != nil {
				log.Error().Err(err).Str("file", file).Msg("failed to process file")
				numFailedFiles++
				continue
			}
			if numFailed > 0 {
				log.Error().
					Str("file", file).
					Int64("writeErrors", numFailed).
					Msg("failed to write records, file not marked as processed")
				numFailedFiles++
				continue
			}
			if err := worklog.MarkProcessed(file, stats); err != nil {
				return total, err
			}
			log.Info().
				Str("file", file).
				Int64("lines", stats.NumLines).
				Int64("written", stats.NumWritten).
				Int64("errors", stats.NumErrors).
				Msg("processed log file")
		}
		if numFailedFiles > 0 {
			return total, fmt.Errorf("failed to process %d file(s)", numFailedFiles)
		}
		return total, nil
	}
}
