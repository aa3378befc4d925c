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

package main

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"text/template"

	"cflogproc/servicelog"
	"cflogproc/servicelog/cloudfront"
)

type FieldInfo struct {
	Name     string
	Type     string
	Nullable bool
}

func luaTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "number (integer)"
	case reflect.Float32, reflect.Float64:
		return "number (float)"
	case reflect.Bool:
		return "boolean"
	case reflect.Struct, reflect.Map:
		return "table (map)"
	case reflect.Slice, reflect.Array:
		return "table (seq)"
	default:
		return t.String()
	}
}

func analyzeStruct(t reflect.Type) []FieldInfo {
	fields := make([]FieldInfo, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		ft := field.Type
		info := FieldInfo{Name: field.Name}
		if ft.Kind() == reflect.Pointer {
			info.Nullable = true
			ft = ft.Elem()
		}
		info.Type = luaTypeName(ft)
		fields = append(fields, info)
	}
	return fields
}

func structType(v any) (reflect.Type, error) {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record must be a struct, got %v", t.Kind())
	}
	return t, nil
}

const stubTemplate = `--[[
Input record (input_rec):
{{range .InputFields}}
  {{.Name}} {{.Type}}{{if .Nullable}} or nil{{end}}{{end}}

  GetTime() string (RFC 3339)
  GetClientIP() string
  GetUserAgent() string
  IsProcessable() boolean

Output record fields settable via set_out:
{{range .OutputFields}}
  {{.Name}} {{.Type}}{{if .Nullable}} or nil{{end}}{{end}}

To create an output record using the default
transformation:

local out = default_transformer:transform(input_rec, tz_shift)

To set a property of an output record:

set_out(out, name, value)

]]--

-- transform processes the input record and returns an output record
-- (or nil to drop the record)
function transform(input_rec, tz_shift)
    local out = default_transformer:transform(input_rec, tz_shift)
    set_out(out, "{{.ExampleField}}", string.format("%s[modified]", input_rec.{{.ExampleField}}))
    return out
end
`

func generateLuaStubForType(inputRec servicelog.InputRecord, outputRec servicelog.OutputRecord) (string, error) {
	t1, err := structType(inputRec)
	if err != nil {
		return "", fmt.Errorf("failed to create Lua script stub: %w", err)
	}
	t2, err := structType(outputRec)
	if err != nil {
		return "", fmt.Errorf("failed to create Lua script stub: %w", err)
	}
	inputFields := analyzeStruct(t1)
	var outputFields []FieldInfo
	for _, f := range analyzeStruct(t2) {
		if cloudfront.IsSettableOutputProperty(f.Name) {
			outputFields = append(outputFields, f)
		}
	}
	tmpl, err := template.New("luaStub").Parse(stubTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	var buf bytes.Buffer
	err = tmpl.Execute(
		&buf,
		struct {
			InputFields  []FieldInfo
			OutputFields []FieldInfo
			ExampleField string
		}{
			InputFields:  inputFields,
			OutputFields: outputFields,
			ExampleField: "Domain",
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func generateLuaStub() (string, error) {
	return generateLuaStubForType(&cloudfront.InputRecord{}, &cloudfront.OutputRecord{})
}
