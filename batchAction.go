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
	"os"

	"cflogproc/config"
	"cflogproc/load/batch"
	"cflogproc/save"
	"cflogproc/scripting"
	"cflogproc/servicelog"
	"cflogproc/servicelog/cloudfront"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"
)

func createLineParser() *cloudfront.LineParser {
	return cloudfront.NewLineParser(func(line string) {
		log.Debug().Str("line", line).Msg("old log format")
	})
}

func createLogTransformer(scriptPath string) (*scripting.Transformer, error) {
	static := cloudfront.NewTransformer()
	if scriptPath == "" {
		return scripting.NewTransformer(nil, static), nil
	}
	env, err := scripting.CreateEnvironment(scriptPath, static)
	if err != nil {
		return nil, err
	}
	log.Info().Str("script", scriptPath).Msg("using custom Lua transformation")
	return scripting.NewTransformer(env, static), nil
}

func runBatchAction(conf *config.Main, options *ProcessOptions, geoDB *geoip2.Reader) error {
	scriptPath := conf.ScriptPath
	if options.scriptPath != "" {
		scriptPath = options.scriptPath
	}
	lt, err := createLogTransformer(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to run batch action: %w", err)
	}
	defer lt.Close()

	processor := &CFLogProcessor{
		geoIPDb:        geoDB,
		logTransformer: lt,
		excludeIPList:  conf.ExcludeIPList,
		location:       conf.TimezoneLocation(),
	}

	worklog, err := batch.NewWorklog(conf.LogFiles.WorklogPath)
	if err != nil {
		return fmt.Errorf("failed to run batch action: %w", err)
	}
	defer worklog.Close()
	log.Info().Msgf("using worklog %s", conf.LogFiles.WorklogPath)
	if options.worklogReset {
		if err := worklog.Reset(); err != nil {
			return fmt.Errorf("unable to reset worklog: %w", err)
		}
		log.Info().Msg("worklog truncated")
	}

	output := conf.Output
	if options.output != "" {
		output = options.output
	}
	var w io.Writer = os.Stdout
	if options.dryRun {
		w = io.Discard
		log.Warn().Msg("using dry-run mode, output is discarded")
	}
	channelWrite := make(chan *servicelog.BoundOutputRecord, 1000)
	confirm, err := save.RunWriteConsumer(channelWrite, output, w)
	if err != nil {
		return fmt.Errorf("failed to run batch action: %w", err)
	}
	proc := batch.CreateLogFileProcFunc(
		batch.NewFileProcessor(createLineParser(), processor),
		worklog,
		channelWrite,
		confirm,
	)
	stats, err := proc(conf.LogFiles)
	close(channelWrite)
	if err != nil {
		return fmt.Errorf("failed to run batch action: %w", err)
	}
	log.Info().
		Int64("lines", stats.NumLines).
		Int64("headers", stats.NumHeaders).
		Int64("errors", stats.NumErrors).
		Int64("ignored", stats.NumIgnored).
		Int64("written", stats.NumWritten).
		Int64("writeErrors", stats.NumWriteErrors).
		Int("excludedIPs", processor.numExcluded).
		Msg("batch processing finished")
	return nil
}
