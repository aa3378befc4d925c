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
	"strconv"
	"strings"
	"time"
)

// TimezoneToInt returns number of minutes to add/subtract to apply
// to UTC to get actual local time reprezented by 'tz'.
func TimezoneToInt(tz string) (int, error) {
	if tz == "" {
		return 0, fmt.Errorf("cannot parse empty string as timezone value")
	}
	sgn := 1
	if tz[0] == '-' {
		sgn = -1

	} else if tz[0] != '+' {
		return 0, fmt.Errorf("cannot parse %s as timezone value", tz)
	}
	items := strings.Split(tz[1:], ":")
	if len(items) != 2 {
		return 0, fmt.Errorf("cannot parse %s as timezone value", tz)
	}
	v1, err := strconv.Atoi(items[0])
	if err != nil {
		return 0, err
	}
	v2, err := strconv.Atoi(items[1])
	if err != nil {
		return 0, err
	}
	return sgn * (60*v1 + v2), nil
}

// LoadTimezone accepts either an IANA time zone name (e.g. Europe/Prague)
// or a fixed offset in the "(-|+)hh:mm" format.
func LoadTimezone(tz string) (*time.Location, error) {
	if tz != "" && (tz[0] == '+' || tz[0] == '-') {
		shift, err := TimezoneToInt(tz)
		if err != nil {
			return nil, err
		}
		return time.FixedZone(tz, shift*60), nil
	}
	return time.LoadLocation(tz)
}

// ShiftMinutes returns the offset (in minutes) of the location
// from UTC at the time 't'.
func ShiftMinutes(loc *time.Location, t time.Time) int {
	_, offset := t.In(loc).Zone()
	return offset / 60
}
