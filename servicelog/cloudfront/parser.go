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

package cloudfront

import (
	"errors"
	"fmt"
	"strings"

	"cflogproc/servicelog"
)

var (
	ErrNoGrammarMatch = errors.New("line does not match any known CloudFront log grammar")

	headerPrefixes = []string{"#Version:", "#Fields:"}
)

// ParseError is the only error kind produced by the LineParser.
// It wraps the cause (grammar mismatch, invalid number) and keeps
// the original line.
type ParseError struct {
	Line  string
	Cause error
}

func (err ParseError) Error() string {
	return fmt.Sprintf("could not parse CloudFront log line %q: %s", err.Line, err.Cause)
}

func (err ParseError) Unwrap() error {
	return err.Cause
}

// NewParseError is a constructor for ParseError
func NewParseError(line string, cause error) ParseError {
	return ParseError{Line: line, Cause: cause}
}

// LegacyFormatHook is called each time a line is parsed
// using the legacy (pre 2013-10-21) grammar.
type LegacyFormatHook func(line string)

// IsHeaderLine tests whether the line is a part of log file
// preamble (and should be skipped)
func IsHeaderLine(line string) bool {
	for _, prefix := range headerPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// LineParser is a parser for reading CloudFront access logs.
// It holds no mutable state so it can be shared.
type LineParser struct {
	grammars     []*Grammar
	onLegacyLine LegacyFormatHook
}

// Parse parses a single log line into a new record. For header
// lines, skip is true and no record is returned.
func (lp *LineParser) Parse(line string) (rec *InputRecord, skip bool, err error) {
	rec = &InputRecord{}
	skip, err = lp.ParseInto(rec, line)
	if skip || err != nil {
		return nil, skip, err
	}
	return rec, false, nil
}

// ParseInto parses a single log line and stores the values to the
// provided record (which allows for the record reuse). All the record
// fields are reset first so no value from a previous call survives.
// In case of an error, the content of the record is unspecified.
func (lp *LineParser) ParseInto(rec *InputRecord, line string) (skip bool, err error) {
	*rec = InputRecord{}
	if IsHeaderLine(line) {
		return true, nil
	}
	for _, g := range lp.grammars {
		tokens := g.match(line)
		if tokens == nil {
			continue
		}
		if g.Name == GrammarLegacy && lp.onLegacyLine != nil {
			lp.onLegacyLine(line)
		}
		for i, fd := range g.Fields {
			if err := fieldSetters[fd.Name](rec, fd, tokens[i]); err != nil {
				return false, NewParseError(
					line, fmt.Errorf("invalid value of %s: %w", fd.Name, err))
			}
		}
		rec.grammar = g.Name
		rec.isProcessable = true
		return false, nil
	}
	return false, NewParseError(line, ErrNoGrammarMatch)
}

// ParseLine adapts Parse to the interface expected by the batch
// processing. Header lines produce a non-processable record.
func (lp *LineParser) ParseLine(s string, lineNum int64) (servicelog.InputRecord, error) {
	rec, skip, err := lp.Parse(s)
	if err != nil {
		return nil, servicelog.NewLineParsingError(lineNum, err)
	}
	if skip {
		return &InputRecord{}, nil
	}
	return rec, nil
}

// NewLineParser is a factory for LineParser. The hook is optional.
func NewLineParser(onLegacyLine LegacyFormatHook) *LineParser {
	return &LineParser{
		grammars:     Grammars,
		onLegacyLine: onLegacyLine,
	}
}
