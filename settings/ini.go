package settings

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"

	"gopkg.in/ini.v1"
)

// parseINI decodes an INI file with one section per kind. INI values are untyped, so every value is stored as
// the narrowest of int64, float64, bool and string it parses as.
func parseINI(data []byte) (map[string]any, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]any)
	for _, section := range f.Sections() {
		if section.Name() == ini.DEFAULT_SECTION {
			continue
		}
		table := make(map[string]any, len(section.Keys()))
		for _, key := range section.Keys() {
			table[key.Name()] = iniValue(key.Value())
		}
		raw[section.Name()] = table
	}
	return raw, nil
}

func iniValue(v string) any {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

// marshalINI encodes raw with one section per kind. Sections and keys are written in sorted order.
func marshalINI(raw map[string]any) ([]byte, error) {
	f := ini.Empty()
	kinds := make([]string, 0, len(raw))
	for kind := range raw {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)

	for _, kind := range kinds {
		section, err := f.NewSection(kind)
		if err != nil {
			return nil, err
		}
		table := raw[kind].(map[string]any)
		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if _, err := section.NewKey(k, fmt.Sprint(table[k])); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
