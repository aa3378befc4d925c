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

	lua "github.com/yuin/gopher-lua"
)

// CreateEnvironment prepares a Lua state with all the registered types
// and functions and runs the script located at `scriptPath`.
func CreateEnvironment(scriptPath string, defaultTransformer servicelog.LogItemTransformer) (*lua.LState, error) {
	L := newState(defaultTransformer)
	if err := L.DoFile(scriptPath); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to process customization script %s: %w", scriptPath, err)
	}
	return L, nil
}

// CreateEnvironmentFromString is the same as CreateEnvironment but
// the script is passed directly as a source code.
func CreateEnvironmentFromString(sourceCode string, defaultTransformer servicelog.LogItemTransformer) (*lua.LState, error) {
	L := newState(defaultTransformer)
	if err := L.DoString(sourceCode); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to process customization source code: %w", err)
	}
	return L, nil
}

func newState(defaultTransformer servicelog.LogItemTransformer) *lua.LState {
	L := lua.NewState()
	registerInputRecord(L)
	registerOutputRecord(L)
	registerStaticTransformer(L, defaultTransformer)
	return L
}

// ------------------------------------

// Transformer runs the `transform` function of a loaded script. In case
// there is no script environment or the script does not define
// the function, the static transformer is used.
// Please note that the transformer is not safe for concurrent use.
type Transformer struct {
	env               *lua.LState
	staticTransformer servicelog.LogItemTransformer
}

func (t *Transformer) Transform(logRec servicelog.InputRecord, tzShiftMin int) (servicelog.OutputRecord, error) {
	if t.env == nil {
		return t.staticTransformer.Transform(logRec, tzShiftMin)
	}
	fnObj := t.env.GetGlobal("transform")
	if fnObj == lua.LNil {
		return t.staticTransformer.Transform(logRec, tzShiftMin)
	}
	err := t.env.CallByParam(
		lua.P{
			Fn:      fnObj,
			NRet:    1,
			Protect: true,
		},
		importInputRecord(t.env, logRec), lua.LNumber(tzShiftMin),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to transform record using a Lua script: %w", err)
	}
	ret := t.env.Get(-1)
	t.env.Pop(1)
	if ret == lua.LNil {
		// script decided to drop the record
		return nil, nil
	}
	tRet, ok := ret.(*lua.LUserData)
	if !ok {
		return nil, fmt.Errorf(
			"failed to transform record using a Lua script: %w", ErrFailedTypeAssertion)
	}
	unwrapped, ok := tRet.Value.(servicelog.OutputRecord)
	if !ok {
		return nil, fmt.Errorf(
			"failed to transform record using a Lua script: invalid type of wrapped value")
	}
	return unwrapped, nil
}

func (t *Transformer) SetOutputProperty(rec servicelog.OutputRecord, name string, value lua.LValue) error {
	return t.staticTransformer.SetOutputProperty(rec, name, value)
}

// Close releases the scripting environment
func (t *Transformer) Close() {
	if t.env != nil {
		t.env.Close()
	}
}

func NewTransformer(env *lua.LState, staticTransformer servicelog.LogItemTransformer) *Transformer {
	return &Transformer{env: env, staticTransformer: staticTransformer}
}
