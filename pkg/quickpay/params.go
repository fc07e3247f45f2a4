package quickpay

import (
	"net/url"
	"strings"
)

// Param is a single key/value request parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered set of request parameters. Encoding keeps insertion order.
type Params []Param

// P builds Params from alternating keys and values. A trailing key without a value is ignored.
func P(kv ...string) Params {
	out := make(Params, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, Param{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

// Add appends a parameter and returns the extended set.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the first value stored under key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Encode form-encodes the parameters joined by sep. An empty sep means "&".
func (p Params) Encode(sep string) string {
	if len(p) == 0 {
		return ""
	}
	if sep == "" {
		sep = defaultArgSeparator
	}
	parts := make([]string, 0, len(p))
	for _, kv := range p {
		parts = append(parts, url.QueryEscape(kv.Key)+"="+url.QueryEscape(kv.Value))
	}
	return strings.Join(parts, sep)
}
