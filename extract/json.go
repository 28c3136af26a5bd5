package extract

import (
	"encoding/json"

	"github.com/ysmood/gson"
)

// decode parses raw JSON into a gson value.
func decode(data []byte) (gson.JSON, bool) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return gson.JSON{}, false
	}
	return gson.New(v), true
}

// field walks nested objects by key and returns the value at the end
// of the path.
func field(j gson.JSON, path ...string) (gson.JSON, bool) {
	cur := j.Val()
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return gson.JSON{}, false
		}
		v, ok := m[key]
		if !ok {
			return gson.JSON{}, false
		}
		cur = v
	}
	return gson.New(cur), true
}

// elements coerces a value to a non-empty slice of raw candidates.
func elements(j gson.JSON) ([]gson.JSON, bool) {
	arr, ok := j.Val().([]interface{})
	if !ok || len(arr) == 0 {
		return nil, false
	}
	out := make([]gson.JSON, len(arr))
	for i, v := range arr {
		out[i] = gson.New(v)
	}
	return out, true
}

// listingsUnder tries each candidate key path in order and returns the
// first non-empty listings array.
func listingsUnder(j gson.JSON, paths [][]string) ([]gson.JSON, bool) {
	for _, p := range paths {
		if v, ok := field(j, p...); ok {
			if records, ok := elements(v); ok {
				return records, true
			}
		}
	}
	return nil, false
}
