// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
	"github.com/pkg/errors"
)

type settings struct {
	Verbose      bool   `doc:"trace assembly steps"`
	SourceMap    bool   `doc:"write source map files"`
	DumpWords    int    `doc:"default number of words to dump"`
	SourceLines  int    `doc:"default number of source lines to list"`
	NextListAddr uint32 `doc:"address of next source listing"`
	NextDumpAddr uint32 `doc:"address of next word dump"`
}

func newSettings() *settings {
	return &settings{
		Verbose:      false,
		SourceMap:    true,
		DumpWords:    16,
		SourceLines:  10,
		NextListAddr: 0,
		NextDumpAddr: 0,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := 0; i < len(settingsFields); i++ {
		f := settingsType.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for _, f := range settingsFields {
		v := value.Field(f.index)
		text := fmt.Sprintf("%v", v)
		if f.kind == reflect.Uint32 {
			text = fmt.Sprintf("$%08X", v.Uint())
		}
		fmt.Fprintf(w, "    %-16s %-10s (%s)\n", f.name, text, f.doc)
	}
}

func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

func (s *settings) Set(key string, value any) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return errors.Wrapf(err, "setting '%s'", key)
	}

	v := reflect.ValueOf(value)
	if !v.IsValid() || v.Kind() == reflect.String || !v.Type().ConvertibleTo(f.typ) {
		return errors.Errorf("invalid value type for setting '%s'", f.name)
	}
	reflect.ValueOf(s).Elem().Field(f.index).Set(v.Convert(f.typ))
	return nil
}
