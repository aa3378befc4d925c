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
	"testing"

	"cflogproc/scripting"
	"cflogproc/servicelog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func transformLine(t *testing.T, line string, tzShiftMin int) *OutputRecord {
	lp := NewLineParser(nil)
	rec, _, err := lp.Parse(line)
	require.NoError(t, err)
	out, err := NewTransformer().Transform(rec, tzShiftMin)
	require.NoError(t, err)
	tOut, ok := out.(*OutputRecord)
	require.True(t, ok)
	return tOut
}

func TestTransformCurrentRecord(t *testing.T) {
	out := transformLine(t, currentLine, 0)
	assert.Equal(t, servicelog.AppTypeCloudFront, out.GetType())
	assert.Equal(t, "2014-05-23T01:13:11Z", out.Datetime)
	assert.Equal(t, "Mozilla/4.0 (compatible; MSIE 5.0b1; Mac_PowerPC)", out.UserAgent)
	assert.Equal(t, "2xx", out.StatusCategory)
	assert.True(t, out.IsCacheHit)
	assert.Equal(t, GrammarCurrent, out.Grammar)
	assert.Equal(t, int64(2390282), *out.Bytes)
	assert.Nil(t, out.QueryString)
}

func TestTransformShiftsTimezone(t *testing.T) {
	out := transformLine(t, currentLine, 120)
	assert.Equal(t, "2014-05-23T03:13:11+02:00", out.Datetime)
	assert.Equal(t, int64(1400807591), out.GetTime().Unix())
}

func TestTransformIDIsDeterministic(t *testing.T) {
	out1 := transformLine(t, currentLine, 0)
	out2 := transformLine(t, currentLine, 60)
	assert.Len(t, out1.GetID(), 36)
	assert.Equal(t, out1.GetID(), out2.GetID())
	out3 := transformLine(t, mkLine(legacyTokens...), 0)
	assert.NotEqual(t, out1.GetID(), out3.GetID())
}

func TestTransformLegacyRecord(t *testing.T) {
	out := transformLine(t, mkLine(legacyTokens...), 0)
	assert.Equal(t, GrammarLegacy, out.Grammar)
	assert.True(t, out.IsCacheHit)
	assert.Nil(t, out.HostHeader)
	assert.Nil(t, out.Bytes)
}

func TestTransformMissHasNoCacheHit(t *testing.T) {
	out := transformLine(t, mkLine(withTokens(legacyTokens, 13, "Miss")...), 0)
	assert.False(t, out.IsCacheHit)
}

func TestTransformRejectsHeaderRecord(t *testing.T) {
	_, err := NewTransformer().Transform(&InputRecord{}, 0)
	assert.Error(t, err)
}

func TestOutputToJSON(t *testing.T) {
	out := transformLine(t, currentLine, 0)
	data, err := out.ToJSON()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "www.displaymyfiles.com", decoded["referrer"])
	assert.Nil(t, decoded["queryString"])
	assert.Contains(t, decoded, "queryString")
	assert.Equal(t, float64(182), decoded["bytesSent"])
	assert.Equal(t, out.GetID(), decoded["id"])
	assert.Len(t, decoded["id"], 36)
	assert.NotContains(t, decoded, "geoip")
}

func TestSetLocation(t *testing.T) {
	out := transformLine(t, currentLine, 0)
	out.SetLocation("Germany", 50.1, 8.6, "Europe/Berlin")
	require.NotNil(t, out.GeoIP)
	assert.Equal(t, "192.0.2.1", out.GeoIP.IP)
	assert.Equal(t, [2]float32{8.6, 50.1}, out.GeoIP.Location)
}

func TestSetOutputProperty(t *testing.T) {
	tr := NewTransformer()
	out := transformLine(t, currentLine, 0)
	assert.NoError(t, tr.SetOutputProperty(out, "UserAgent", lua.LString("bot")))
	assert.Equal(t, "bot", out.UserAgent)
	assert.NoError(t, tr.SetOutputProperty(out, "Referrer", lua.LNil))
	assert.Nil(t, out.Referrer)
	assert.NoError(t, tr.SetOutputProperty(out, "IsCacheHit", lua.LFalse))
	assert.False(t, out.IsCacheHit)
	assert.NoError(t, tr.SetOutputProperty(out, "Datetime", lua.LString("2024-12-02T16:51:19+01:00")))
	assert.Equal(t, "2024-12-02T16:51:19+01:00", out.Datetime)
}

func TestSetOutputPropertyInvalidAttr(t *testing.T) {
	tr := NewTransformer()
	out := transformLine(t, currentLine, 0)
	err := tr.SetOutputProperty(out, "Foo", lua.LString("x"))
	assert.Equal(t, scripting.InvalidAttrError{Attr: "Foo"}, err)
	err = tr.SetOutputProperty(out, "UserAgent", lua.LNumber(3))
	assert.Equal(t, scripting.InvalidAttrError{Attr: "UserAgent"}, err)
}
