package codec

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// Converters turn a raw entry value into a typed Go value. Entries read back
// from the wire carry strings, bools and json.Number values; entries set
// programmatically keep their native types. The converters accept both.

func AsString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}

	return "", errors.Newf("expected a string, got %T", v)
}

func AsBool(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}

	return false, errors.Newf("expected a bool, got %T", v)
}

func AsInt32(v any) (int32, error) {
	i, err := AsInt64(v)
	if err != nil {
		return 0, err
	}
	if i < -1<<31 || i > 1<<31-1 {
		return 0, errors.Newf("value %d overflows int32", i)
	}

	return int32(i), nil
}

func AsUInt32(v any) (uint32, error) {
	u, err := AsUInt64(v)
	if err != nil {
		return 0, err
	}
	if u > 1<<32-1 {
		return 0, errors.Newf("value %d overflows uint32", u)
	}

	return uint32(u), nil
}

func AsInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		return strconv.ParseInt(v.String(), 10, 64)
	}

	return 0, errors.Newf("expected an integer, got %T", v)
}

func AsUInt64(v any) (uint64, error) {
	switch v := v.(type) {
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	case json.Number:
		return strconv.ParseUint(v.String(), 10, 64)
	}

	return 0, errors.Newf("expected an unsigned integer, got %T", v)
}

func AsFloat32(v any) (float32, error) {
	if f, ok := v.(float32); ok {
		return f, nil
	}

	f, err := AsFloat64(v)
	if err != nil {
		return 0, err
	}

	return float32(f), nil
}

func AsFloat64(v any) (float64, error) {
	switch v := v.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case json.Number:
		return strconv.ParseFloat(v.String(), 64)
	}

	return 0, errors.Newf("expected a float, got %T", v)
}

func AsTime(v any) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case string:
		return time.Parse(TimeFormat, v)
	}

	return time.Time{}, errors.Newf("expected a timestamp, got %T", v)
}

func AsBytes(v any) ([]byte, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case string:
		return base64.StdEncoding.DecodeString(v)
	}

	return nil, errors.Newf("expected binary data, got %T", v)
}

func AsObject(v any) (*Object, error) {
	if o, ok := v.(*Object); ok {
		return o, nil
	}

	return nil, errors.Newf("expected an object, got %T", v)
}
