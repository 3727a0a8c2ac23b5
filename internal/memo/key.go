package memo

import (
	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
)

// StaticKey is the key shared by every call that passes no arguments, so a
// memoized function without parameters behaves as a single-slot cache.
const StaticKey = "static_key"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Key derives the cache key of one call from its argument list.
//
// Arguments are encoded as a JSON array, so ("a", "b") and ("ab") differ and
// equal argument values always map to the same key. Arguments that JSON
// cannot encode (channels, functions, cyclic values) are rejected.
func Key(args ...any) (string, error) {
	if len(args) == 0 {
		return StaticKey, nil
	}
	key, err := json.MarshalToString(args)
	if err != nil {
		return "", errors.Wrapf(err, "derive memo key from %d args", len(args))
	}
	return key, nil
}
