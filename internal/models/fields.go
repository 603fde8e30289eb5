package models

import "encoding/json"

// Coercion helpers for field maps decoded from webhook JSON, where numbers
// arrive as float64 and upstream encodes booleans as 0/1.

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case float64:
		return b != 0, b == 0 || b == 1
	case int:
		return b != 0, b == 0 || b == 1
	case int64:
		return b != 0, b == 0 || b == 1
	}
	return false, false
}

func setInt64(dst *int64, v any) {
	if n, ok := asInt64(v); ok {
		*dst = n
	}
}

func setInt64Ptr(dst **int64, v any) {
	if v == nil {
		*dst = nil
		return
	}
	if n, ok := asInt64(v); ok {
		*dst = &n
	}
}

func setStringPtr(dst **string, v any) {
	if v == nil {
		*dst = nil
		return
	}
	if s, ok := asString(v); ok {
		*dst = &s
	}
}

func setString(dst *string, v any) {
	if s, ok := asString(v); ok {
		*dst = s
	}
}

func setBoolPtr(dst **bool, v any) {
	if v == nil {
		*dst = nil
		return
	}
	if b, ok := asBool(v); ok {
		*dst = &b
	}
}

func int64Value(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringValue(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func boolValue(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}
