package util

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"runtime/debug"
)

func Panic(message string) {
	panic(fmt.Sprintf("%s\n%s", message, string(debug.Stack())))
}

func Assert(val bool, message string) {
	if !val {
		Panic(message)
	}
}

func CheckErr(err error, message string) {
	if err != nil {
		Panic(fmt.Sprintf("ERROR: %v - %v", message, err))
	}
}

// All driver buffers are little-endian fixed-layout structs, so encoding
// and decoding always goes through these helpers.

func ReadLE[T any](reader io.Reader) T {
	var value T
	err := binary.Read(reader, binary.LittleEndian, &value)
	CheckErr(err, "Could not read data")
	return value
}

func ToLE[T any](val T) []byte {
	buffer := new(bytes.Buffer)
	binary.Write(buffer, binary.LittleEndian, val)
	return buffer.Bytes()
}

func FromLE[T any](valBytes []byte) T {
	buffer := bytes.NewBuffer(valBytes)
	val := ReadLE[T](buffer)
	return val
}

// SizeOf returns the encoded size of T's fixed layout.
func SizeOf[T any]() uint32 {
	var val T
	buffer := new(bytes.Buffer)
	binary.Write(buffer, binary.LittleEndian, &val)
	return uint32(buffer.Len())
}

func Pad[T any](src []T, size int) []T {
	destination := make([]T, size)
	copy(destination, src)
	return destination
}
