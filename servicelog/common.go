// Copyright 2019 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2019 Institute of the Czech National Corpus,
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

package servicelog

import (
	"fmt"
	"net"
	"time"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

const (

	// AppTypeCloudFront defines a universal storage identifier for CloudFront access logs
	AppTypeCloudFront = "cloudfront"
)

// LineParsingError informs that we failed to parse a line of a log
// file. The processing of the file may continue with the next line.
type LineParsingError struct {
	LineNumber int64
	Cause      error
}

func (m LineParsingError) Error() string {
	return fmt.Sprintf("%s: LineParsingError at line %d", m.Cause, m.LineNumber)
}

func (m LineParsingError) Unwrap() error {
	return m.Cause
}

// NewLineParsingError is a constructor for LineParsingError
func NewLineParsingError(lineNumber int64, cause error) LineParsingError {
	return LineParsingError{LineNumber: lineNumber, Cause: cause}
}

// InputRecord describes a common behavior for objects extracted
// from a log line.
type InputRecord interface {
	GetTime() time.Time
	GetClientIP() net.IP
	GetUserAgent() string

	// IsProcessable tells whether the record represents an actual
	// logged event (and not e.g. a file header).
	IsProcessable() bool
}

// GeoDataRecord represents a full client geographical
// position information as provided by GeoIP database
type GeoDataRecord struct {
	ContinentCode string     `json:"continent_code"`
	CountryCode2  string     `json:"country_code2"`
	CountryCode3  string     `json:"country_code3"`
	CountryName   string     `json:"country_name"`
	IP            string     `json:"ip"`
	Latitude      float32    `json:"latitude"`
	Longitude     float32    `json:"longitude"`
	Location      [2]float32 `json:"location"`
	Timezone      string     `json:"timezone"`
}

// OutputRecord describes a common behavior for records ready to
// be stored to the storage with a defined type.
type OutputRecord interface {
	SetLocation(countryName string, latitude float32, longitude float32, timezone string)

	// ToJSON creates an object suitable for storing to document-oriented
	// databases or for line-oriented JSON output
	ToJSON() ([]byte, error)

	// Create an idempotent unique identifier of the record.
	// This can be typically acomplished by hashing the original
	// log record.
	GetID() string

	// Return app type as defined by an external convention
	GetType() string

	// Get time of the log record
	GetTime() time.Time
}

type LogRange struct {
	Inode     int64 `json:"inode"`
	SeekStart int64 `json:"seekStart"`
	SeekEnd   int64 `json:"seekEnd"`
	Written   bool  `json:"written"`
}

func (p LogRange) String() string {
	return fmt.Sprintf("LogRange{Inode: %d, Seek: %d-%d, Written: %t}",
		p.Inode, p.SeekStart, p.SeekEnd, p.Written)
}

type BoundOutputRecord struct {
	Rec      OutputRecord
	FilePos  LogRange
	FilePath string
}

func (r *BoundOutputRecord) ToJSON() ([]byte, error) {
	return r.Rec.ToJSON()
}

func (r *BoundOutputRecord) GetTime() time.Time {
	return r.Rec.GetTime()
}

func (r *BoundOutputRecord) GetID() string {
	return r.Rec.GetID()
}

func (r *BoundOutputRecord) GetType() string {
	return r.Rec.GetType()
}

// LogItemTransformer defines a general object able to transform
// an input log record to an output one.
type LogItemTransformer interface {
	Transform(logRec InputRecord, tzShiftMin int) (OutputRecord, error)

	// SetOutputProperty allows scripts to modify output records
	SetOutputProperty(rec OutputRecord, name string, value lua.LValue) error
}

// ExcludeIPList represents a list of IP addresses
// which should not be included in log processing
// and archiving. These are typically requests from
// watchdog services.
type ExcludeIPList []string

// Excludes tests an input record whether it should
// be excluded based in its IP address.
func (elist ExcludeIPList) Excludes(rec InputRecord) bool {
	excludes := collections.SliceContains(elist, rec.GetClientIP().String())
	if excludes {
		log.Debug().Str("ip", rec.GetClientIP().String()).Msg("excluded IP")
	}
	return excludes
}
