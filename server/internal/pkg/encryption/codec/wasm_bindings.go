//go:build js && wasm
// +build js,wasm

package codec

import (
	"fmt"
	"syscall/js"

	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption/padding"
)

func errorObject(msg string) js.Value {
	obj := js.Global().Get("Object").New()
	obj.Set("error", msg)
	return obj
}

// stringArg reads a string argument, rejecting null and undefined
func stringArg(args []js.Value, i int, name string) (string, error) {
	if i >= len(args) || args[i].IsNull() || args[i].IsUndefined() {
		return "", fmt.Errorf("%s is null or undefined", name)
	}
	return args[i].String(), nil
}

// engineFromArgs builds an engine from (key, iv, data, padding?, useMDS?)
func engineFromArgs(args []js.Value) (*Engine, string, error) {
	key, err := stringArg(args, 0, "key")
	if err != nil {
		return nil, "", err
	}
	iv, err := stringArg(args, 1, "iv")
	if err != nil {
		return nil, "", err
	}
	data, err := stringArg(args, 2, "data")
	if err != nil {
		return nil, "", err
	}

	paddingName := ""
	if len(args) > 3 && args[3].Type() == js.TypeString {
		paddingName = args[3].String()
	}
	padder, err := padding.GetPadder(paddingName)
	if err != nil {
		return nil, "", err
	}

	useMDS := len(args) > 4 && args[4].Type() == js.TypeBoolean && args[4].Bool()

	engine, err := New(key, iv, WithPadding(padder), WithMDS(useMDS))
	if err != nil {
		return nil, "", err
	}
	return engine, data, nil
}

// RegisterWasmFunctions exposes TwofishEncrypt and TwofishDecrypt on globalThis
func RegisterWasmFunctions() {
	// TwofishEncrypt(key, iv, plaintext, padding?, useMDS?) -> {ciphertext} | {error}
	encrypt := js.FuncOf(func(this js.Value, args []js.Value) (result any) {
		defer func() {
			if r := recover(); r != nil {
				result = errorObject(fmt.Sprintf("panic: %v", r))
			}
		}()

		engine, plaintext, err := engineFromArgs(args)
		if err != nil {
			return errorObject(err.Error())
		}
		ciphertext, err := engine.Encrypt(plaintext)
		if err != nil {
			return errorObject(err.Error())
		}

		obj := js.Global().Get("Object").New()
		obj.Set("ciphertext", ciphertext)
		return obj
	})

	// TwofishDecrypt(key, iv, ciphertext, padding?, useMDS?) -> {plaintext} | {error}
	decrypt := js.FuncOf(func(this js.Value, args []js.Value) (result any) {
		defer func() {
			if r := recover(); r != nil {
				result = errorObject(fmt.Sprintf("panic: %v", r))
			}
		}()

		engine, ciphertext, err := engineFromArgs(args)
		if err != nil {
			return errorObject(err.Error())
		}
		plaintext, err := engine.Decrypt(ciphertext)
		if err != nil {
			return errorObject(err.Error())
		}

		obj := js.Global().Get("Object").New()
		obj.Set("plaintext", plaintext)
		return obj
	})

	js.Global().Set("TwofishEncrypt", encrypt)
	js.Global().Set("TwofishDecrypt", decrypt)
}
