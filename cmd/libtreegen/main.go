// Command libtreegen builds the C shared library exposing generate_file.
//
//	go build -buildmode=c-shared -o libtreegen.so ./cmd/libtreegen
package main

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#define TREEGEN_BUILDING
#include "treegen.h"
*/
import "C"

import (
	"unsafe"

	"github.com/jakoblorz/go-treegen/internal/abi"
)

//export generate_file
func generate_file(conf *C.CItemConfig, dirPath *C.char) C.int32_t {
	return C.int32_t(abi.Generate((*abi.Node)(unsafe.Pointer(conf)), (*byte)(unsafe.Pointer(dirPath))))
}

func main() {}
