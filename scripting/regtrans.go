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

	lua "github.com/yuin/gopher-lua"
)

const (
	transformerMTName = "default_transformer_mt"
	transformerName   = "default_transformer"
)

// registerStaticTransformer exposes the built-in transformer
// to a script as `default_transformer:transform(rec, tzshift)` along
// with the `set_out(out_rec, key, value)` function.
func registerStaticTransformer(env *lua.LState, transformer servicelog.LogItemTransformer) {

	transFn := func(L *lua.LState) int {
		lrec := L.CheckUserData(2)
		tLrec, ok := lrec.Value.(servicelog.InputRecord)
		if !ok {
			L.ArgError(2, "expected InputRecord")
		}
		tzshift := L.OptInt(3, 0)
		ans, err := transformer.Transform(tLrec, tzshift)
		if err != nil {
			L.RaiseError("failed to transform record: %s", err)
		}
		L.Push(wrapOutputRecord(L, ans))
		return 1
	}

	var transformerMethods = map[string]lua.LGFunction{
		"transform": transFn,
	}
	mt := env.NewTypeMetatable(transformerMTName)
	env.SetGlobal("set_out", env.NewFunction(func(L *lua.LState) int {
		orec := checkOutputRecord(L, 1)
		key := L.CheckString(2)
		val := L.CheckAny(3)
		if err := transformer.SetOutputProperty(orec, key, val); err != nil {
			L.RaiseError("set_out failed: %s", err)
		}
		return 0
	}))
	env.SetField(mt, "__index", env.SetFuncs(env.NewTable(), transformerMethods))
	tt := env.NewUserData()
	env.SetMetatable(tt, mt)
	env.SetGlobal(transformerName, tt)
}
