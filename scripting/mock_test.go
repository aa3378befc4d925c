// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
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

package scripting

import (
	"cflogproc/servicelog"
	"fmt"
	"net"
	"time"

	lua "github.com/yuin/gopher-lua"
)

type dummyInputRec struct {
	Addr      string
	Path      *string
	Status    *int
	processed bool
}

func (r *dummyInputRec) GetTime() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

func (r *dummyInputRec) GetClientIP() net.IP {
	return net.ParseIP(r.Addr)
}

func (r *dummyInputRec) GetUserAgent() string {
	return "Mozilla/5.0"
}

func (r *dummyInputRec) IsProcessable() bool {
	return true
}

// ---------

type dummyOutputRec struct {
	ID     string
	Domain string
	Shift  int
}

func (r *dummyOutputRec) SetLocation(countryName string, latitude float32, longitude float32, timezone string) {
}

func (r *dummyOutputRec) ToJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"domain": %q}`, r.Domain)), nil
}

func (r *dummyOutputRec) GetID() string {
	return r.ID
}

func (r *dummyOutputRec) GetType() string {
	return "dummy"
}

func (r *dummyOutputRec) GetTime() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

// ---------

type dummyTransformer struct {
	numCalls int
}

func (t *dummyTransformer) Transform(logRec servicelog.InputRecord, tzShiftMin int) (servicelog.OutputRecord, error) {
	t.numCalls++
	return &dummyOutputRec{ID: logRec.GetClientIP().String(), Domain: "example.org", Shift: tzShiftMin}, nil
}

func (t *dummyTransformer) SetOutputProperty(rec servicelog.OutputRecord, name string, value lua.LValue) error {
	tRec, ok := rec.(*dummyOutputRec)
	if !ok {
		return ErrFailedTypeAssertion
	}
	switch name {
	case "Domain":
		tRec.Domain = value.String()
		return nil
	case "ID":
		tRec.ID = value.String()
		return nil
	}
	return InvalidAttrError{Attr: name}
}
