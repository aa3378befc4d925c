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
	"flag"
	"fmt"
	"io"
	"os"

	"cflogproc/config"
	"cflogproc/logging"

	"github.com/oschwald/geoip2-golang"
	"github.com/rs/zerolog/log"
)

var (
	version   string
	buildDate string
	gitCommit string
)

const (
	actionScriptStub = "script-stub"
)

// setup loads and validates the configuration and initializes logging.
// The returned closer releases the log file.
func setup(confPath, action string) (*config.Main, io.Closer) {
	if confPath == "" {
		fmt.Fprintln(os.Stderr, "Config path not specified")
		os.Exit(1)
	}
	conf, err := config.Load(confPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logCloser, err := logging.Setup(conf.LogPath, conf.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize logging")
	}
	if err := config.Validate(conf, action); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		logCloser.Close()
		os.Exit(1)
	}
	return conf, logCloser
}

func processBatch(conf *config.Main, procOpts *ProcessOptions) error {
	var geoDB *geoip2.Reader
	if conf.HasGeoIP() {
		var err error
		geoDB, err = geoip2.Open(conf.GeoIPDbPath)
		if err != nil {
			return fmt.Errorf("failed to open GeoIP database: %w", err)
		}
		defer geoDB.Close()
	}
	return runBatchAction(conf, procOpts, geoDB)
}

func main() {
	procOpts := new(ProcessOptions)
	flag.BoolVar(&procOpts.worklogReset, "worklog-reset", false, "Use the provided worklog but reset it first")
	flag.BoolVar(&procOpts.dryRun, "dry-run", false, "Process the logs but do not write any output")
	flag.StringVar(&procOpts.scriptPath, "script", "", "A path to a custom Lua transformation script")
	flag.StringVar(&procOpts.output, "output", "", "Output format (json, msgpack)")
	flag.StringVar(&procOpts.timeZone, "tz", "", "Time zone for the parse action (IANA name or +hh:mm)")
	logLevel := flag.String("log-level", "info", "Log level for actions without a config (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "cflogproc - CloudFront access log processor\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n\t%s [options] batch config.(json|yaml)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\t%s [options] parse < access.log\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\t%s %s\n", os.Args[0], actionScriptStub)
		fmt.Fprintf(os.Stderr, "\t%s help [topic]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\t%s version\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	action := flag.Arg(0)

	switch action {
	case config.ActionHelp:
		showHelp(flag.Arg(1))
	case config.ActionVersion:
		fmt.Printf("cflogproc %s\nbuild date: %s\nlast commit: %s\n", version, buildDate, gitCommit)
	case actionScriptStub:
		src, err := generateLuaStub()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(src)
	case config.ActionParse:
		if _, err := logging.Setup("", *logLevel); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize logging")
		}
		if err := runParseAction(os.Stdin, os.Stdout, procOpts); err != nil {
			log.Fatal().Err(err).Msg("failed to parse logs")
		}
	case config.ActionBatch:
		conf, logCloser := setup(flag.Arg(1), action)
		err := processBatch(conf, procOpts)
		if err != nil {
			log.Error().Err(err).Msg("failed to process logs")
		}
		logCloser.Close()
		if err != nil {
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown action [%s]. Try -h for help\n", action)
		os.Exit(1)
	}
}
