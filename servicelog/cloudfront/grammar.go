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
	"fmt"
	"regexp"
	"strings"
)

// Column names as listed in the `#Fields:` header of CloudFront
// access log files.
const (
	FieldDate         = "date"
	FieldTime         = "time"
	FieldEdgeLocation = "x-edge-location"
	FieldBytesSent    = "sc-bytes"
	FieldIPAddress    = "c-ip"
	FieldOperation    = "cs-method"
	FieldDomain       = "cs(Host)"
	FieldObject       = "cs-uri-stem"
	FieldHTTPStatus   = "sc-status"
	FieldReferrer     = "cs(Referer)"
	FieldUserAgent    = "cs(User-Agent)"
	FieldQueryString  = "cs-uri-query"
	FieldCookie       = "cs(Cookie)"
	FieldResultType   = "x-edge-result-type"
	FieldRequestID    = "x-edge-request-id"
	FieldHostHeader   = "x-host-header"
	FieldProtocol     = "cs-protocol"
	FieldBytes        = "cs-bytes"
)

const (
	GrammarCurrent = "current"
	GrammarLegacy  = "legacy"
)

// Java-compatible whitespace (i.e. including vertical tab). The last
// column stops at the first line terminator.
const (
	separatorExpr = `[\s\v]+`
	tokenExpr     = `([^\s\v]+)`
	tailExpr      = `([^\r\n\x{85}\x{2028}\x{2029}]+)`
)

type FieldKind int

const (
	KindString FieldKind = iota
	KindInteger
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// FieldDesc describes a single positional column of a log line.
// A nullable field turns the `-` sentinel into an absent value.
type FieldDesc struct {
	Name     string
	Kind     FieldKind
	Nullable bool
}

// Grammar is a named column layout of a CloudFront access log line.
// All the columns except for the last one are runs of non-whitespace
// characters. The last one extends to the end of the line so it may
// contain whitespace.
type Grammar struct {
	Name   string
	Fields []FieldDesc
	rx     *regexp.Regexp
}

// match returns matched tokens (one per field) or nil
func (g *Grammar) match(line string) []string {
	srch := g.rx.FindStringSubmatch(line)
	if srch == nil {
		return nil
	}
	return srch[1:]
}

func (g *Grammar) String() string {
	return fmt.Sprintf("Grammar{Name: %s, Fields: %d}", g.Name, len(g.Fields))
}

func newGrammar(name string, fields []FieldDesc) *Grammar {
	var expr strings.Builder
	for i, fd := range fields {
		if _, ok := fieldSetters[fd.Name]; !ok {
			panic(fmt.Sprintf("grammar %s: no setter for field %s", name, fd.Name))
		}
		if i > 0 {
			expr.WriteString(separatorExpr)
		}
		if i < len(fields)-1 {
			expr.WriteString(tokenExpr)

		} else {
			expr.WriteString(tailExpr)
		}
	}
	return &Grammar{
		Name:   name,
		Fields: fields,
		rx:     regexp.MustCompile(expr.String()),
	}
}

var (
	legacyFields = []FieldDesc{
		{Name: FieldDate, Kind: KindString},
		{Name: FieldTime, Kind: KindString},
		{Name: FieldEdgeLocation, Kind: KindString},
		{Name: FieldBytesSent, Kind: KindInteger, Nullable: true},
		{Name: FieldIPAddress, Kind: KindString},
		{Name: FieldOperation, Kind: KindString},
		{Name: FieldDomain, Kind: KindString},
		{Name: FieldObject, Kind: KindString},
		{Name: FieldHTTPStatus, Kind: KindInteger, Nullable: true},
		{Name: FieldReferrer, Kind: KindString, Nullable: true},
		{Name: FieldUserAgent, Kind: KindString},
		{Name: FieldQueryString, Kind: KindString, Nullable: true},
		{Name: FieldCookie, Kind: KindString, Nullable: true},
		{Name: FieldResultType, Kind: KindString},
		{Name: FieldRequestID, Kind: KindString},
	}

	// the layout introduced by CloudFront on 2013-10-21
	currentFields = append(
		legacyFields[:len(legacyFields):len(legacyFields)],
		FieldDesc{Name: FieldHostHeader, Kind: KindString, Nullable: true},
		FieldDesc{Name: FieldProtocol, Kind: KindString, Nullable: true},
		FieldDesc{Name: FieldBytes, Kind: KindInteger, Nullable: true},
	)

	// Grammars lists supported layouts in the order they are tried.
	// The first one matching a line wins.
	Grammars = []*Grammar{
		newGrammar(GrammarCurrent, currentFields),
		newGrammar(GrammarLegacy, legacyFields),
	}
)
