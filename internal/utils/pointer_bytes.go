package utils

import (
	"unsafe"
)

// The type (`T`) MUST NOT contain any pointer nor slice, as the bytes may
// live outside of the Go heap.
func PointerToBytes[T any](val *T, length int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(val)), length)
}

func BytesToPointer[T any](b []byte) *T {
	return (*T)(unsafe.Pointer(unsafe.SliceData(b)))
}
