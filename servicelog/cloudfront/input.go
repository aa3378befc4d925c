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
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// Sentinel is CloudFront's "no value" marker
	Sentinel = "-"

	datetimeLayout = "2006-01-02 15:04:05"
)

// InputRecord represents a parsed line of a CloudFront access log.
// Pointer fields are absent (nil) in case the log contains
// the `-` sentinel or in case the matching grammar does not
// know the column at all.
type InputRecord struct {
	Date         string
	Time         string
	EdgeLocation string
	BytesSent    *int64
	IPAddress    string
	Operation    string
	Domain       string
	Object       string
	HTTPStatus   *int
	Referrer     *string
	UserAgent    string
	QueryString  *string
	Cookie       *string
	ResultType   string
	RequestID    string
	HostHeader   *string
	Protocol     *string
	Bytes        *int64

	grammar       string
	isProcessable bool
}

// Grammar returns name of the grammar the record was parsed with
func (r *InputRecord) Grammar() string {
	return r.grammar
}

// GetTime returns a normalized log date and time information.
// CloudFront logs always use UTC.
func (r *InputRecord) GetTime() time.Time {
	if !r.isProcessable {
		return time.Time{}
	}
	t, err := time.Parse(datetimeLayout, r.Date+" "+r.Time)
	if err != nil {
		log.Error().Err(err).Str("date", r.Date).Str("time", r.Time).
			Msg("failed to convert CloudFront datetime")
		return time.Time{}
	}
	return t
}

// GetClientIP returns a normalized IP address info
func (r *InputRecord) GetClientIP() net.IP {
	return net.ParseIP(r.IPAddress)
}

// GetUserAgent returns a raw HTTP user agent info as provided by the client
func (r *InputRecord) GetUserAgent() string {
	return r.UserAgent
}

// IsProcessable returns true if the record represents an actual request
// (i.e. not a header line)
func (r *InputRecord) IsProcessable() bool {
	return r.isProcessable
}

// FormatLine serializes the record back to a tab separated log line.
// Absent values are written as the `-` sentinel.
func (r *InputRecord) FormatLine() string {
	cols := []string{
		r.Date,
		r.Time,
		r.EdgeLocation,
		formatInt64(r.BytesSent),
		r.IPAddress,
		r.Operation,
		r.Domain,
		r.Object,
		formatInt(r.HTTPStatus),
		formatString(r.Referrer),
		r.UserAgent,
		formatString(r.QueryString),
		formatString(r.Cookie),
		r.ResultType,
		r.RequestID,
	}
	if r.grammar != GrammarLegacy {
		cols = append(
			cols,
			formatString(r.HostHeader),
			formatString(r.Protocol),
			formatInt64(r.Bytes),
		)
	}
	return strings.Join(cols, "\t")
}

func formatString(v *string) string {
	if v == nil {
		return Sentinel
	}
	return *v
}

func formatInt64(v *int64) string {
	if v == nil {
		return Sentinel
	}
	return strconv.FormatInt(*v, 10)
}

func formatInt(v *int) string {
	if v == nil {
		return Sentinel
	}
	return strconv.Itoa(*v)
}

// ----------------------------- coercion

func coerceString(fd FieldDesc, token string) *string {
	if fd.Nullable && token == Sentinel {
		return nil
	}
	return &token
}

func coerceInteger(fd FieldDesc, token string, bitSize int) (*int64, error) {
	if fd.Nullable && token == Sentinel {
		return nil, nil
	}
	v, err := strconv.ParseInt(token, 10, bitSize)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type fieldSetter func(rec *InputRecord, fd FieldDesc, token string) error

func setInt64(target func(*InputRecord) **int64) fieldSetter {
	return func(rec *InputRecord, fd FieldDesc, token string) error {
		v, err := coerceInteger(fd, token, 64)
		if err != nil {
			return err
		}
		*target(rec) = v
		return nil
	}
}

func setNullableString(target func(*InputRecord) **string) fieldSetter {
	return func(rec *InputRecord, fd FieldDesc, token string) error {
		*target(rec) = coerceString(fd, token)
		return nil
	}
}

func setString(target func(*InputRecord) *string) fieldSetter {
	return func(rec *InputRecord, fd FieldDesc, token string) error {
		*target(rec) = token
		return nil
	}
}

var fieldSetters = map[string]fieldSetter{
	FieldDate:         setString(func(r *InputRecord) *string { return &r.Date }),
	FieldTime:         setString(func(r *InputRecord) *string { return &r.Time }),
	FieldEdgeLocation: setString(func(r *InputRecord) *string { return &r.EdgeLocation }),
	FieldBytesSent:    setInt64(func(r *InputRecord) **int64 { return &r.BytesSent }),
	FieldIPAddress:    setString(func(r *InputRecord) *string { return &r.IPAddress }),
	FieldOperation:    setString(func(r *InputRecord) *string { return &r.Operation }),
	FieldDomain:       setString(func(r *InputRecord) *string { return &r.Domain }),
	FieldObject:       setString(func(r *InputRecord) *string { return &r.Object }),
	FieldHTTPStatus: func(rec *InputRecord, fd FieldDesc, token string) error {
		v, err := coerceInteger(fd, token, 32)
		if err != nil {
			return err
		}
		rec.HTTPStatus = nil
		if v != nil {
			status := int(*v)
			rec.HTTPStatus = &status
		}
		return nil
	},
	FieldReferrer:    setNullableString(func(r *InputRecord) **string { return &r.Referrer }),
	FieldUserAgent:   setString(func(r *InputRecord) *string { return &r.UserAgent }),
	FieldQueryString: setNullableString(func(r *InputRecord) **string { return &r.QueryString }),
	FieldCookie:      setNullableString(func(r *InputRecord) **string { return &r.Cookie }),
	FieldResultType:  setString(func(r *InputRecord) *string { return &r.ResultType }),
	FieldRequestID:   setString(func(r *InputRecord) *string { return &r.RequestID }),
	FieldHostHeader:  setNullableString(func(r *InputRecord) **string { return &r.HostHeader }),
	FieldProtocol:    setNullableString(func(r *InputRecord) **string { return &r.Protocol }),
	FieldBytes:       setInt64(func(r *InputRecord) **int64 { return &r.Bytes }),
}
