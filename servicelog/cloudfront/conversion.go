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
	"net/url"
	"strings"
	"time"

	"cflogproc/scripting"
	"cflogproc/servicelog"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
)

var (
	settableOutputProps = []string{
		"ID", "Type", "Datetime", "IPAddress", "UserAgent", "Domain", "Object",
		"ResultType", "StatusCategory", "IsCacheHit", "Referrer", "QueryString", "Cookie",
	}

	recordIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("cflogproc:cloudfront"))
)

// isCacheHit tells whether CloudFront served the request from
// an edge cache
func isCacheHit(resultType string) bool {
	return resultType == "Hit" || resultType == "RefreshHit"
}

func statusCategory(status *int) string {
	if status == nil {
		return ""
	}
	return fmt.Sprintf("%dxx", *status/100)
}

// unescapeUserAgent decodes CloudFront's URL-encoding of the user agent.
// In case the value cannot be decoded, it is returned unchanged.
func unescapeUserAgent(ua string) string {
	ans, err := url.PathUnescape(ua)
	if err != nil {
		return ua
	}
	return ans
}

func createID(rec *InputRecord) string {
	src := strings.Join(
		[]string{rec.Date, rec.Time, rec.EdgeLocation, rec.IPAddress, rec.RequestID}, "|")
	return uuid.NewSHA1(recordIDNamespace, []byte(src)).String()
}

// Transformer converts a source log object into a destination one
type Transformer struct {
}

// Transform creates a new OutputRecord out of an existing InputRecord
func (t *Transformer) Transform(logRec servicelog.InputRecord, tzShiftMin int) (servicelog.OutputRecord, error) {
	rec, ok := logRec.(*InputRecord)
	if !ok {
		return nil, fmt.Errorf("unexpected input record type %T", logRec)
	}
	if !rec.IsProcessable() {
		return nil, fmt.Errorf("cannot transform a non-processable record")
	}
	r := &OutputRecord{
		ID:             createID(rec),
		Type:           servicelog.AppTypeCloudFront,
		EdgeLocation:   rec.EdgeLocation,
		BytesSent:      rec.BytesSent,
		IPAddress:      rec.IPAddress,
		Operation:      rec.Operation,
		Domain:         rec.Domain,
		Object:         rec.Object,
		HTTPStatus:     rec.HTTPStatus,
		StatusCategory: statusCategory(rec.HTTPStatus),
		Referrer:       rec.Referrer,
		UserAgent:      unescapeUserAgent(rec.UserAgent),
		QueryString:    rec.QueryString,
		Cookie:         rec.Cookie,
		ResultType:     rec.ResultType,
		IsCacheHit:     isCacheHit(rec.ResultType),
		RequestID:      rec.RequestID,
		HostHeader:     rec.HostHeader,
		Protocol:       rec.Protocol,
		Bytes:          rec.Bytes,
		Grammar:        rec.Grammar(),
	}
	r.SetTime(rec.GetTime().In(time.FixedZone("", tzShiftMin*60)))
	return r, nil
}

// IsSettableOutputProperty tells whether a script is able to
// change the output record property using `set_out`
func IsSettableOutputProperty(name string) bool {
	return collections.SliceContains(settableOutputProps, name)
}

func (t *Transformer) SetOutputProperty(rec servicelog.OutputRecord, name string, value lua.LValue) error {
	tRec, ok := rec.(*OutputRecord)
	if !ok {
		return scripting.ErrFailedTypeAssertion
	}
	switch name {
	case "ID":
		if tValue, ok := value.(lua.LString); ok {
			tRec.ID = string(tValue)
			return nil
		}
	case "Type":
		if tValue, ok := value.(lua.LString); ok {
			tRec.Type = string(tValue)
			return nil
		}
	case "Datetime":
		if tValue, ok := value.(lua.LString); ok {
			dt, err := time.Parse(time.RFC3339, string(tValue))
			if err != nil {
				return err
			}
			tRec.SetTime(dt)
			return nil
		}
	case "IPAddress":
		if tValue, ok := value.(lua.LString); ok {
			tRec.IPAddress = string(tValue)
			return nil
		}
	case "UserAgent":
		if tValue, ok := value.(lua.LString); ok {
			tRec.UserAgent = string(tValue)
			return nil
		}
	case "Domain":
		if tValue, ok := value.(lua.LString); ok {
			tRec.Domain = string(tValue)
			return nil
		}
	case "Object":
		if tValue, ok := value.(lua.LString); ok {
			tRec.Object = string(tValue)
			return nil
		}
	case "ResultType":
		if tValue, ok := value.(lua.LString); ok {
			tRec.ResultType = string(tValue)
			return nil
		}
	case "StatusCategory":
		if tValue, ok := value.(lua.LString); ok {
			tRec.StatusCategory = string(tValue)
			return nil
		}
	case "IsCacheHit":
		tRec.IsCacheHit = value == lua.LTrue
		return nil
	case "Referrer":
		tRec.Referrer = luaToNullableString(value)
		return nil
	case "QueryString":
		tRec.QueryString = luaToNullableString(value)
		return nil
	case "Cookie":
		tRec.Cookie = luaToNullableString(value)
		return nil
	}
	return scripting.InvalidAttrError{Attr: name}
}

// luaToNullableString maps Lua nil (or any non-string value) to
// an absent value
func luaToNullableString(value lua.LValue) *string {
	if tValue, ok := value.(lua.LString); ok {
		s := string(tValue)
		return &s
	}
	return nil
}

// NewTransformer is a default constructor for the Transformer.
func NewTransformer() *Transformer {
	return &Transformer{}
}
