//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption/codec"
)

func main() {
	fmt.Println("WASM Twofish module initialized")

	codec.RegisterWasmFunctions()

	// Export a ready flag to signal that WASM is ready
	js.Global().Set("WasmReady", js.ValueOf(true))

	// Go WASM programs must not return
	<-make(chan struct{})
}
