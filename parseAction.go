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

package main

import (
	"fmt"
	"io"
	"sync"

	"cflogproc/config"
	"cflogproc/load/batch"
	"cflogproc/save"
	"cflogproc/servicelog"

	"github.com/rs/zerolog/log"
)

// runWriter starts an output consumer and returns a function
// waiting for all the confirmations.
func runWriter(
	incoming <-chan *servicelog.BoundOutputRecord,
	format string,
	w io.Writer,
) (func() int, error) {
	confirm, err := save.RunWriteConsumer(incoming, format, w)
	if err != nil {
		return nil, err
	}
	var numFailed int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range confirm {
			if msg.Error != nil {
				numFailed++
			}
		}
	}()
	return func() int {
		wg.Wait()
		return numFailed
	}, nil
}

// runParseAction reads CloudFront log lines from `src` and writes
// transformed rows to `dst`
func runParseAction(src io.Reader, dst io.Writer, options *ProcessOptions) error {
	lt, err := createLogTransformer(options.scriptPath)
	if err != nil {
		return fmt.Errorf("failed to run parse action: %w", err)
	}
	defer lt.Close()
	tz := options.timeZone
	if tz == "" {
		tz = config.DefaultTimeZone
	}
	loc, err := servicelog.LoadTimezone(tz)
	if err != nil {
		return fmt.Errorf("failed to run parse action: %w", err)
	}
	processor := &CFLogProcessor{
		logTransformer: lt,
		location:       loc,
	}
	channelWrite := make(chan *servicelog.BoundOutputRecord, 100)
	if options.dryRun {
		dst = io.Discard
	}
	wait, err := runWriter(channelWrite, options.output, dst)
	if err != nil {
		return fmt.Errorf("failed to run parse action: %w", err)
	}
	fp := batch.NewFileProcessor(createLineParser(), processor)
	stats, err := fp.ProcessReader("stdin", src, channelWrite)
	close(channelWrite)
	numFailed := wait()
	if err != nil {
		return fmt.Errorf("failed to run parse action: %w", err)
	}
	if numFailed > 0 {
		return fmt.Errorf("failed to run parse action: %d record(s) not written", numFailed)
	}
	log.Debug().Any("stats", stats).Msg("parse action finished")
	return nil
}
