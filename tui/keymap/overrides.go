// Package keymap applies user key overrides from the config file to
// bubbles key maps.
package keymap

import (
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"

	"github.com/grovetools/forksync/config"
)

// ConfigKey is the config section holding overrides.
const ConfigKey = "keys"

// Overrides maps snake_case action names to replacement keys.
//
//	keys:
//	  select_all: ["A"]
//	  delete: ["ctrl+d"]
type Overrides map[string][]string

// FromConfig reads the keys section. A missing section yields nil.
func FromConfig(cfg *config.Config) (Overrides, error) {
	if cfg == nil {
		return nil, nil
	}
	var o Overrides
	if err := cfg.UnmarshalExtension(ConfigKey, &o); err != nil {
		return nil, err
	}
	return o, nil
}

// Apply replaces the keys of every key.Binding field of km named in
// overrides, keeping the help description. Field names are matched in
// snake_case: SelectAll is select_all. km must be a pointer to a struct;
// embedded structs are walked. The override names that matched no field
// are returned, sorted.
func Apply(km interface{}, overrides Overrides) []string {
	if len(overrides) == 0 {
		return nil
	}

	v := reflect.ValueOf(km)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil
	}

	used := make(map[string]bool, len(overrides))
	apply(v.Elem(), overrides, used)

	var unknown []string
	for name := range overrides {
		if !used[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

var bindingType = reflect.TypeOf(key.Binding{})

func apply(v reflect.Value, overrides Overrides, used map[string]bool) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		ft := t.Field(i)
		if !field.CanSet() {
			continue
		}
		if ft.Anonymous && field.Kind() == reflect.Struct {
			apply(field, overrides, used)
			continue
		}
		if ft.Type != bindingType {
			continue
		}

		name := camelToSnake(ft.Name)
		keys := overrides[name]
		if len(keys) == 0 {
			continue
		}
		used[name] = true

		current := field.Interface().(key.Binding)
		field.Set(reflect.ValueOf(key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), current.Help().Desc),
		)))
	}
}

// camelToSnake converts PageUp to page_up.
func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
