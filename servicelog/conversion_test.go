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
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type dummyInputRec struct {
	ip string
}

func (r *dummyInputRec) GetTime() time.Time   { return time.Time{} }
func (r *dummyInputRec) GetClientIP() net.IP  { return net.ParseIP(r.ip) }
func (r *dummyInputRec) GetUserAgent() string { return "" }
func (r *dummyInputRec) IsProcessable() bool  { return true }

func TestTimezoneToIntPositive(t *testing.T) {
	v, err := TimezoneToInt("+02:30")
	assert.NoError(t, err)
	assert.Equal(t, 150, v)
}

func TestTimezoneToIntNegative(t *testing.T) {
	v, err := TimezoneToInt("-05:00")
	assert.NoError(t, err)
	assert.Equal(t, -300, v)
}

func TestTimezoneToIntInvalid(t *testing.T) {
	_, err := TimezoneToInt("02:00")
	assert.Error(t, err)
	_, err = TimezoneToInt("+0200")
	assert.Error(t, err)
	_, err = TimezoneToInt("")
	assert.Error(t, err)
}

func TestLoadTimezoneFixedOffset(t *testing.T) {
	loc, err := LoadTimezone("+01:00")
	assert.NoError(t, err)
	dt := time.Date(2014, 5, 23, 1, 13, 11, 0, time.UTC)
	assert.Equal(t, 60, ShiftMinutes(loc, dt))
}

func TestLoadTimezoneUTC(t *testing.T) {
	loc, err := LoadTimezone("UTC")
	assert.NoError(t, err)
	assert.Equal(t, 0, ShiftMinutes(loc, time.Now()))
}

func TestLoadTimezoneInvalid(t *testing.T) {
	_, err := LoadTimezone("Nowhere/Atlantis")
	assert.Error(t, err)
}

func TestExcludeIPList(t *testing.T) {
	elist := ExcludeIPList{"192.0.2.1", "198.51.100.7"}
	assert.True(t, elist.Excludes(&dummyInputRec{ip: "192.0.2.1"}))
	assert.False(t, elist.Excludes(&dummyInputRec{ip: "192.0.2.2"}))
}

func TestLineParsingErrorUnwrap(t *testing.T) {
	cause := errors.New("broken")
	err := NewLineParsingError(42, cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "line 42")
}
