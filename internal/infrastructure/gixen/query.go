package gixen

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// EncodeQuery はパラメータをURLクエリ文字列に変換します
// キーと値はどちらもエスケープされ、"key=value" の要素は
// エンコード後の文字列の辞書順に並べて "&" で連結します。
// namespace を指定すると "namespace[key]=value" の形になり、
// 値が map[string]any の場合は入れ子としてその形で展開します。
func EncodeQuery(params map[string]any, namespace string) string {
	parts := make([]string, 0, len(params))
	for key, value := range params {
		name := key
		if namespace != "" {
			name = namespace + "[" + key + "]"
		}
		if nested, ok := value.(map[string]any); ok {
			parts = append(parts, EncodeQuery(nested, name))
			continue
		}
		parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(toParam(value)))
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}

// toParam は値をクエリに載せる文字列に変換します
func toParam(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
