package main

/*
#include <stdint.h>
*/
import "C"

import (
	"os"
	"unsafe"
)

// hookinject_entry writes "ok" to the path passed as data.
//
//export hookinject_entry
func hookinject_entry(data *C.char, stayResident *C.int32_t, state unsafe.Pointer) {
	if data == nil {
		return
	}
	path := C.GoString(data)
	if path == "" {
		return
	}
	_ = os.WriteFile(path, []byte("ok"), 0o644)
}

func main() {}
