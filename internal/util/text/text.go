package text

import (
	"reflect"
	"sort"
	"strings"
)

// AvailableMapKeys renders the keys of a map as a sorted, quoted,
// comma-separated list, for assembling option helptext.
func AvailableMapKeys(m interface{}) string {
	v := reflect.ValueOf(m)
	avail := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		avail = append(avail, "'"+k.String()+"'")
	}
	sort.Strings(avail)
	return strings.Join(avail, ", ")
}

func Commify(v int) string { return Commify64(int64(v)) }

func Commify64(v int64) string {
	var digits, sign string

	if v < 0 {
		sign = "-"
		v = -v
	}

	for v > 999 {
		digits = "," + threeDigits(v%1000) + digits
		v /= 1000
	}

	return sign + padlessDigits(v) + digits
}

func threeDigits(v int64) string {
	return string([]byte{
		byte('0' + v/100),
		byte('0' + (v/10)%10),
		byte('0' + v%10),
	})
}

func padlessDigits(v int64) string {
	if v == 0 {
		return "0"
	}
	var b []byte
	for v > 0 {
		b = append([]byte{byte('0' + v%10)}, b...)
		v /= 10
	}
	return string(b)
}
