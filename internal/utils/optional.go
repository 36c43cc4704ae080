// Package utils holds small helpers for the optional fields of the API bodies, which are
// pointers so that an absent field and an empty one stay apart on the wire.
package utils

// Value dereferences v, or gives the zero value when v is nil
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// NonEmpty is Ptr for strings, except that "" stays absent
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
