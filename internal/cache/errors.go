package cache

import (
	"github.com/cockroachdb/errors"
)

// Errors returned by the engines and the memo registry. Match them with
// errors.Is; Code exposes the numeric code.
var (
	ErrInvalidConfiguration = newCacheError("invalid configuration", 100)

	// Registry related
	ErrCacheNotFound = newCacheError("cache not found", 200)
	ErrCacheExists   = newCacheError("cache already exists", 201)
)

type cacheError struct {
	msg     string
	errCode int32
}

func newCacheError(msg string, code int32) cacheError {
	return cacheError{
		msg:     msg,
		errCode: code,
	}
}

func (e cacheError) code() int32 {
	return e.errCode
}

func (e cacheError) Error() string {
	return e.msg
}

func (e cacheError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(cacheError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

// Code returns the code of the cache error wrapped by err,
// 0 for nil and -1 for errors raised outside this package.
func Code(err error) int32 {
	if err == nil {
		return 0
	}
	var ce cacheError
	if errors.As(err, &ce) {
		return ce.code()
	}
	return -1
}

// WrapErrInvalidConfiguration reports a caller contract violation such as an
// out-of-range TTL or a negative capacity.
func WrapErrInvalidConfiguration(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidConfiguration, format, args...)
}

// WrapErrCacheNotFound reports a lookup of an unregistered cache name.
func WrapErrCacheNotFound(name string) error {
	return errors.Wrapf(ErrCacheNotFound, "name=%s", name)
}

// WrapErrCacheExists reports a second registration under the same name.
func WrapErrCacheExists(name string) error {
	return errors.Wrapf(ErrCacheExists, "name=%s", name)
}
