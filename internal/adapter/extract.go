package adapter

// dig walks a decoded JSON value along path. String elements index objects,
// int elements index arrays. Any mismatch yields (nil, false).
func dig(payload any, path ...any) (any, bool) {
	cur := payload
	for _, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			next, ok := obj[key]
			if !ok {
				return nil, false
			}
			cur = next
		case int:
			arr, ok := cur.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			cur = arr[key]
		default:
			return nil, false
		}
	}
	return cur, true
}

// textAt returns the non-empty string found at path, or FallbackResponse.
func textAt(payload any, path ...any) string {
	v, ok := dig(payload, path...)
	if !ok {
		return FallbackResponse
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return FallbackResponse
	}
	return s
}
