//go:build wasm

package main

import (
	"context"
	"encoding/json"
	"sync"
	"syscall/js"

	"github.com/netcfgkit/iossection/pkg/scanner"
	"github.com/netcfgkit/iossection/pkg/section"
	"github.com/netcfgkit/iossection/pkg/types"
)

var (
	scanners   = make(map[int]*scanner.Core)
	scannersMu sync.RWMutex
	nextID     int
)

// newScanner creates a scanner over the given profiles JSON ("builtin" for
// the builtin profiles) and mode ("extract" when omitted).
// JS: IOSSectionNewScanner(profilesJSON, [mode]) -> handle (int) or error string
func newScanner(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "profilesJSON argument required"}
	}

	var profiles []*types.Profile
	if profilesJSON := args[0].String(); profilesJSON != "builtin" && profilesJSON != "" {
		if err := json.Unmarshal([]byte(profilesJSON), &profiles); err != nil {
			return map[string]interface{}{"error": "failed to parse profiles JSON: " + err.Error()}
		}
		for _, p := range profiles {
			p.StructuralID = p.ComputeStructuralID()
		}
	}

	mode := section.ModeExtract
	if len(args) > 1 {
		var ok bool
		if mode, ok = section.ParseMode(args[1].String()); !ok {
			return map[string]interface{}{"error": "unknown mode: " + args[1].String()}
		}
	}

	// Results stay in the scanner's own in-memory store.
	core, err := scanner.NewCore(scanner.Options{Profiles: profiles, Mode: mode})
	if err != nil {
		return map[string]interface{}{"error": "failed to create scanner: " + err.Error()}
	}

	// Register scanner
	scannersMu.Lock()
	id := nextID
	nextID++
	scanners[id] = core
	scannersMu.Unlock()

	return map[string]interface{}{"handle": id}
}

func lookupScanner(handle int) (*scanner.Core, bool) {
	scannersMu.RLock()
	defer scannersMu.RUnlock()
	core, ok := scanners[handle]
	return core, ok
}

// scan scans a single configuration.
// JS: IOSSectionScan(handle, content, source) -> JSON results or error
func scan(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return map[string]interface{}{"error": "handle and content arguments required"}
	}

	core, ok := lookupScanner(args[0].Int())
	if !ok {
		return map[string]interface{}{"error": "invalid scanner handle"}
	}

	source := ""
	if len(args) > 2 {
		source = args[2].String()
	}

	result, err := core.Scan(context.Background(), args[1].String(), source)
	if err != nil {
		return map[string]interface{}{"error": "scan failed: " + err.Error()}
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return map[string]interface{}{"error": "failed to marshal results: " + err.Error()}
	}

	return string(jsonBytes)
}

// scanBatch scans multiple configurations.
// JS: IOSSectionScanBatch(handle, itemsJSON) -> JSON results or error
func scanBatch(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return map[string]interface{}{"error": "handle and itemsJSON arguments required"}
	}

	core, ok := lookupScanner(args[0].Int())
	if !ok {
		return map[string]interface{}{"error": "invalid scanner handle"}
	}

	var items []scanner.ContentItem
	if err := json.Unmarshal([]byte(args[1].String()), &items); err != nil {
		return map[string]interface{}{"error": "failed to parse items JSON: " + err.Error()}
	}

	results, err := core.ScanBatch(context.Background(), items)
	if err != nil {
		return map[string]interface{}{"error": "batch scan failed: " + err.Error()}
	}

	jsonBytes, err := json.Marshal(results)
	if err != nil {
		return map[string]interface{}{"error": "failed to marshal results: " + err.Error()}
	}

	return string(jsonBytes)
}

// closeScanner closes a scanner and releases resources.
// JS: IOSSectionCloseScanner(handle)
func closeScanner(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "handle argument required"}
	}

	handle := args[0].Int()

	scannersMu.Lock()
	core, ok := scanners[handle]
	if ok {
		delete(scanners, handle)
	}
	scannersMu.Unlock()

	if !ok {
		return map[string]interface{}{"error": "invalid scanner handle"}
	}

	core.Close()

	return nil
}

// getBuiltinProfiles returns the builtin profiles as JSON.
// JS: IOSSectionGetBuiltinProfiles() -> JSON profiles array
func getBuiltinProfiles(this js.Value, args []js.Value) interface{} {
	profiles, err := scanner.GetBuiltinProfiles()
	if err != nil {
		return map[string]interface{}{"error": "failed to load builtin profiles: " + err.Error()}
	}

	jsonBytes, err := json.Marshal(profiles)
	if err != nil {
		return map[string]interface{}{"error": "failed to marshal profiles: " + err.Error()}
	}

	return string(jsonBytes)
}
