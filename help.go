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

import "fmt"

var helpTopics = map[string]string{
	"batch": `Process CloudFront access log files (plain or gzipped) found
in a configured directory. Already processed files are recorded in a worklog
and skipped in subsequent runs (use -worklog-reset to start over).

A configuration file can be written either in JSON or in YAML
(based on the file suffix):

{
    "logFiles": {
        "srcPath": "/var/log/cloudfront",
        "pattern": "E2ABCDEF.*.gz",
        "worklogPath": "/var/opt/cflogproc/worklog.db"
    },
    "geoIpDbPath": "/path/to/GeoLite2-City.mmdb",
    "logPath": "/var/log/cflogproc.log",
    "logLevel": "info",
    "timeZone": "Europe/Prague",
    "excludeIpList": ["10.0.0.1"],
    "scriptPath": "/path/to/custom.lua",
    "output": "json"
}
`,
	"parse": `Read CloudFront log lines from the standard input and write
transformed records to the standard output. No configuration is needed.
Use -tz to specify a time zone of output datetime values and -output
to choose between "json" (default) and "msgpack".
`,
	"script": `A Lua script may define a function

function transform(input_rec, tz_shift)
    local out = default_transformer:transform(input_rec, tz_shift)
    set_out(out, "Domain", "example.org")
    return out
end

Returning nil drops the record. Run "cflogproc script-stub" to obtain
a list of available input and output record fields.
`,
}

func showHelp(topic string) {
	if txt, ok := helpTopics[topic]; ok {
		fmt.Println(txt)
		return
	}
	fmt.Println("Available help topics: batch, parse, script")
}
