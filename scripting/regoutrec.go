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
	outputRecName = "output_rec_mt"
)

func checkOutputRecord(L *lua.LState, pos int) servicelog.OutputRecord {
	ud := L.CheckUserData(pos)
	if v, ok := ud.Value.(servicelog.OutputRecord); ok {
		return v
	}
	L.ArgError(pos, "servicelog.OutputRecord expected")
	return nil
}

func registerOutputRecord(env *lua.LState) {
	mt := env.NewTypeMetatable(outputRecName)
	env.SetField(mt, "__index", env.NewFunction(func(L *lua.LState) int {
		rec := checkOutputRecord(L, 1)
		switch L.CheckString(2) {
		case "ID":
			L.Push(lua.LString(rec.GetID()))
		case "Type":
			L.Push(lua.LString(rec.GetType()))
		default:
			L.Push(lua.LNil)
		}
		return 1
	}))
}

func wrapOutputRecord(env *lua.LState, rec servicelog.OutputRecord) *lua.LUserData {
	ud := env.NewUserData()
	ud.Value = rec
	env.SetMetatable(ud, env.GetTypeMetatable(outputRecName))
	return ud
}
