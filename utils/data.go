package utils

import (
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// OrderedMapToString converts an orderedmap to a string.
func OrderedMapToString(data orderedmap.OrderedMap[string, any]) string {
	var sb strings.Builder
	sb.WriteByte('[')
	count := data.Len()
	for _, key := range data.Keys() {
		v, _ := data.Get(key)
		sb.WriteString(fmt.Sprintf("%s=%v", key, v))

		count--
		if count > 0 {
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// KeyValsToOrderedMap builds an ordered map from alternating keys and values, keeping the order they
// were passed in. A trailing key without a value is ignored.
// Example: KeyValsToOrderedMap("vertical", 0.5, "max", 0.42) => [vertical=0.5 max=0.42].
func KeyValsToOrderedMap(kv ...any) *orderedmap.OrderedMap[string, any] {
	m := orderedmap.NewOrderedMap[string, any]()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		m.Set(key, kv[i+1])
	}
	return m
}
