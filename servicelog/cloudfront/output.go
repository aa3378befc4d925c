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
	"encoding/json"
	"time"

	"cflogproc/servicelog"
)

// OutputRecord represents a polished version of a CloudFront access
// log record as materialized for further storage/processing.
type OutputRecord struct {
	ID             string                    `json:"id"`
	Type           string                    `json:"type"`
	Datetime       string                    `json:"datetime"`
	time           time.Time
	EdgeLocation   string                    `json:"edgeLocation"`
	BytesSent      *int64                    `json:"bytesSent"`
	IPAddress      string                    `json:"ipAddress"`
	Operation      string                    `json:"operation"`
	Domain         string                    `json:"domain"`
	Object         string                    `json:"object"`
	HTTPStatus     *int                      `json:"httpStatus"`
	StatusCategory string                    `json:"statusCategory,omitempty"`
	Referrer       *string                   `json:"referrer"`
	UserAgent      string                    `json:"userAgent"`
	QueryString    *string                   `json:"queryString"`
	Cookie         *string                   `json:"cookie"`
	ResultType     string                    `json:"resultType"`
	IsCacheHit     bool                      `json:"isCacheHit"`
	RequestID      string                    `json:"requestId"`
	HostHeader     *string                   `json:"hostHeader"`
	Protocol       *string                   `json:"protocol"`
	Bytes          *int64                    `json:"bytes"`
	Grammar        string                    `json:"grammar"`
	GeoIP          *servicelog.GeoDataRecord `json:"geoip,omitempty"`
}

// SetLocation sets all the location related properties
func (r *OutputRecord) SetLocation(countryName string, latitude float32, longitude float32, timezone string) {
	r.GeoIP = &servicelog.GeoDataRecord{
		IP:          r.IPAddress,
		CountryName: countryName,
		Latitude:    latitude,
		Longitude:   longitude,
		Location:    [2]float32{longitude, latitude},
		Timezone:    timezone,
	}
}

// GetID returns an idempotent ID of the record.
func (r *OutputRecord) GetID() string {
	return r.ID
}

// GetType returns application type identifier
func (r *OutputRecord) GetType() string {
	return r.Type
}

// GetTime returns a creation time of the record
func (r *OutputRecord) GetTime() time.Time {
	return r.time
}

func (r *OutputRecord) SetTime(t time.Time) {
	r.Datetime = t.Format(time.RFC3339)
	r.time = t
}

// ToJSON converts data to a JSON document
func (r *OutputRecord) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
