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
	"net"
	"reflect"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const (
	inputRecName = "input_rec_mt"
)

func importField(L *lua.LState, field reflect.Value) lua.LValue {
	switch field.Kind() {
	case reflect.Pointer:
		// absent values
		if field.IsNil() {
			return lua.LNil
		}
		return importField(L, field.Elem())
	case reflect.String:
		return lua.LString(field.String())
	case reflect.Int, reflect.Int64:
		return lua.LNumber(float64(field.Int()))
	case reflect.Float64:
		return lua.LNumber(field.Float())
	case reflect.Bool:
		return lua.LBool(field.Bool())

	case reflect.Slice:
		if ipVal, ok := field.Interface().(net.IP); ok {
			return lua.LString(ipVal.String())
		}
		tbl := L.NewTable()
		for i := 0; i < field.Len(); i++ {
			elem := field.Index(i)
			L.RawSetInt(tbl, i+1, importField(L, elem))
		}
		return tbl
	default:
		if field.CanInterface() {
			switch tVal := field.Interface().(type) {
			case time.Time:
				return lua.LString(tVal.Format(time.RFC3339))
			}
		}
	}
	return lua.LNil
}

// getIRecProp provides exported fields of the record along
// with some of the InputRecord methods
func getIRecProp(L *lua.LState, inputRec servicelog.InputRecord, name string) lua.LValue {
	val := reflect.ValueOf(inputRec)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}
	if val.Kind() == reflect.Struct {
		if sf, ok := val.Type().FieldByName(name); ok && sf.IsExported() {
			return importField(L, val.FieldByIndex(sf.Index))
		}
	}
	switch name {
	case "IsProcessable":
		return L.NewFunction(func(l *lua.LState) int {
			l.Push(lua.LBool(inputRec.IsProcessable()))
			return 1
		})
	case "GetTime":
		return L.NewFunction(func(l *lua.LState) int {
			l.Push(lua.LString(inputRec.GetTime().Format(time.RFC3339)))
			return 1
		})
	case "GetClientIP":
		return L.NewFunction(func(l *lua.LState) int {
			l.Push(lua.LString(inputRec.GetClientIP().String()))
			return 1
		})
	case "GetUserAgent":
		return L.NewFunction(func(l *lua.LState) int {
			l.Push(lua.LString(inputRec.GetUserAgent()))
			return 1
		})
	}
	return lua.LNil
}

func get(L *lua.LState) int {
	irec := L.CheckUserData(1)
	tIrec, ok := irec.Value.(servicelog.InputRecord)
	if !ok {
		L.ArgError(1, "expecting InputRecord")
	}
	key := L.CheckString(2)
	ans := getIRecProp(L, tIrec, key)
	L.Push(ans)
	return 1
}

func importInputRecord(L *lua.LState, rec servicelog.InputRecord) lua.LValue {
	d := L.NewUserData()
	d.Value = rec
	L.SetMetatable(d, L.GetTypeMetatable(inputRecName))
	return d
}

func registerInputRecord(L *lua.LState) {
	mt := L.NewTypeMetatable(inputRecName)
	L.SetField(mt, "__index", L.NewFunction(get))
}
