//go:build wasm

package main

import (
	"syscall/js"
)

func main() {
	// Export functions to JavaScript
	js.Global().Set("IOSSectionExtract", js.FuncOf(extract))
	js.Global().Set("IOSSectionRemove", js.FuncOf(remove))
	js.Global().Set("IOSSectionInterface", js.FuncOf(convertInterface))
	js.Global().Set("IOSSectionNewScanner", js.FuncOf(newScanner))
	js.Global().Set("IOSSectionScan", js.FuncOf(scan))
	js.Global().Set("IOSSectionScanBatch", js.FuncOf(scanBatch))
	js.Global().Set("IOSSectionCloseScanner", js.FuncOf(closeScanner))
	js.Global().Set("IOSSectionGetBuiltinProfiles", js.FuncOf(getBuiltinProfiles))

	// Keep WASM running
	<-make(chan struct{})
}
