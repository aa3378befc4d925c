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
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"cflogproc/servicelog"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
)

const (
	maxLineLength = 1024 * 1024
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
)

// LineParser represents an object able to parse an individual
// line of a log file.
type LineParser interface {
	ParseLine(s string, lineNum int64) (servicelog.InputRecord, error)
}

// LogItemProcessor converts a parsed record into an output one.
// In case the returned record is nil, the item is ignored.
type LogItemProcessor interface {
	ProcItem(logRec servicelog.InputRecord) (servicelog.OutputRecord, error)
}

// Stats contains numbers of different outcomes of processed lines
type Stats struct {
	NumLines   int64 `json:"numLines"`
	NumHeaders int64 `json:"numHeaders"`
	NumErrors  int64 `json:"numErrors"`
	NumIgnored int64 `json:"numIgnored"`
	NumWritten int64 `json:"numWritten"`

	// NumWriteErrors counts written records the output failed to store
	NumWriteErrors int64 `json:"numWriteErrors"`
}

func (s Stats) Add(other Stats) Stats {
	return Stats{
		NumLines:   s.NumLines + other.NumLines,
		NumHeaders: s.NumHeaders + other.NumHeaders,
		NumErrors:  s.NumErrors + other.NumErrors,
		NumIgnored: s.NumIgnored + other.NumIgnored,
		NumWritten: s.NumWritten + other.NumWritten,

		NumWriteErrors: s.NumWriteErrors + other.NumWriteErrors,
	}
}

type multiCloser []io.Closer

func (mc multiCloser) Close() error {
	var ans error
	for i := len(mc) - 1; i >= 0; i-- {
		if err := mc[i].Close(); err != nil {
			ans = errors.Join(ans, err)
		}
	}
	return ans
}

type logFileReader struct {
	io.Reader
	io.Closer
}

// OpenLogFile opens a log file for reading. Gzipped files (as stored
// by CloudFront) are decompressed transparently.
func OpenLogFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	rd := bufio.NewReader(f)
	head, err := rd.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		f.Close()
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if !bytes.Equal(head, gzipMagic) {
		return logFileReader{Reader: rd, Closer: f}, nil
	}
	gzr, err := gzip.NewReader(rd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open gzipped log file: %w", err)
	}
	return logFileReader{Reader: gzr, Closer: multiCloser{f, gzr}}, nil
}

// FileProcessor reads log files line by line and sends
// transformed records to an output channel.
type FileProcessor struct {
	lineParser LineParser
	processor  LogItemProcessor
}

// ProcessFile processes a single file. Unparseable lines are logged
// and skipped, the processing continues with the next line.
// The returned error means the file could not be read.
func (fp *FileProcessor) ProcessFile(
	path string,
	out chan<- *servicelog.BoundOutputRecord,
) (Stats, error) {
	rd, err := OpenLogFile(path)
	if err != nil {
		return Stats{}, err
	}
	defer rd.Close()
	return fp.ProcessReader(path, rd, out)
}

// ProcessReader processes lines from any reader (e.g. stdin).
// The `path` is used only to identify the source in logs and
// in output records.
func (fp *FileProcessor) ProcessReader(
	path string,
	rd io.Reader,
	out chan<- *servicelog.BoundOutputRecord,
) (Stats, error) {
	var stats Stats
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 64*1024), maxLineLength)
	// number of bytes consumed by the last line including its terminator
	var lineSize int
	sc.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := bufio.ScanLines(data, atEOF)
		if token != nil {
			lineSize = advance
		}
		return advance, token, err
	})
	var seek int64
	for sc.Scan() {
		stats.NumLines++
		line := sc.Text()
		pos := servicelog.LogRange{SeekStart: seek, SeekEnd: seek + int64(lineSize)}
		seek = pos.SeekEnd
		if len(line) == 0 {
			stats.NumIgnored++
			continue
		}
		rec, err := fp.lineParser.ParseLine(line, stats.NumLines)
		if err != nil {
			var lpErr servicelog.LineParsingError
			if errors.As(err, &lpErr) {
				log.Error().
					Err(lpErr.Cause).
					Str("file", path).
					Int64("line", lpErr.LineNumber).
					Msg("failed to parse log line")

			} else {
				log.Error().Err(err).Str("file", path).Msg("failed to parse log line")
			}
			stats.NumErrors++
			continue
		}
		if !rec.IsProcessable() {
			stats.NumHeaders++
			continue
		}
		outRec, err := fp.processor.ProcItem(rec)
		if err != nil {
			log.Error().
				Err(err).
				Str("file", path).
				Int64("line", stats.NumLines).
				Msg("failed to process log record")
			stats.NumErrors++
			continue
		}
		if outRec == nil {
			stats.NumIgnored++
			continue
		}
		out <- &servicelog.BoundOutputRecord{
			Rec:      outRec,
			FilePos:  pos,
			FilePath: path,
		}
		stats.NumWritten++
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("failed to read log file %s: %w", path, err)
	}
	return stats, nil
}

func NewFileProcessor(lineParser LineParser, processor LogItemProcessor) *FileProcessor {
	return &FileProcessor{lineParser: lineParser, processor: processor}
}
