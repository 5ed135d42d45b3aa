package filearray

import (
	"reflect"
	"unsafe"
)

// elementSize returns sizeof(T) including any padding in T's layout.
func elementSize[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// validateElement rejects element types whose bit pattern cannot round-trip
// through a file: anything containing pointers, and zero-size types.
func validateElement[T any]() error {
	t := reflect.TypeFor[T]()
	if t.Size() == 0 {
		return &ErrUnsupportedType{Type: t, Reason: "zero-size type"}
	}
	return checkPointerFree(t)
}

func checkPointerFree(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return nil
	case reflect.Array:
		return checkPointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if err := checkPointerFree(t.Field(i).Type); err != nil {
				return err
			}
		}
		return nil
	default:
		return &ErrUnsupportedType{Type: t, Reason: "contains " + t.Kind().String()}
	}
}

// view reinterprets the mapped bytes as a []T. Trailing bytes that do not
// form a whole T are excluded. The mapping is page-aligned, which satisfies
// any element alignment Go can produce.
func view[T any](b []byte) []T {
	size := elementSize[T]()
	n := len(b) / size
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}
