//go:build wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/netcfgkit/iossection"
)

// sectionOptions is the optional third argument of extract and remove.
type sectionOptions struct {
	IgnoreCase bool   `json:"ignorecase"`
	Prefix     string `json:"prefix"`
}

// extract selects matching sections.
// JS: IOSSectionExtract(config, patternsJSON, [optionsJSON]) -> JSON lines or error
func extract(this js.Value, args []js.Value) interface{} {
	return runSection(iossection.ModeExtract, args)
}

// remove drops matching sections.
// JS: IOSSectionRemove(config, patternsJSON, [optionsJSON]) -> JSON lines or error
func remove(this js.Value, args []js.Value) interface{} {
	return runSection(iossection.ModeRemove, args)
}

func runSection(mode iossection.Mode, args []js.Value) interface{} {
	if len(args) < 2 {
		return map[string]interface{}{"error": "config and patternsJSON arguments required"}
	}

	var patterns []string
	if err := json.Unmarshal([]byte(args[1].String()), &patterns); err != nil {
		return map[string]interface{}{"error": "failed to parse patterns JSON: " + err.Error()}
	}

	var opts sectionOptions
	if len(args) > 2 && args[2].Type() == js.TypeString {
		if err := json.Unmarshal([]byte(args[2].String()), &opts); err != nil {
			return map[string]interface{}{"error": "failed to parse options JSON: " + err.Error()}
		}
	}

	var options []iossection.Option
	if opts.IgnoreCase {
		options = append(options, iossection.WithIgnoreCase())
	}
	if opts.Prefix != "" {
		options = append(options, iossection.WithPrefix(opts.Prefix))
	}

	lines, err := iossection.Run(mode, iossection.SplitLines(args[0].String()), patterns, options...)
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	jsonBytes, err := json.Marshal(lines)
	if err != nil {
		return map[string]interface{}{"error": "failed to marshal lines: " + err.Error()}
	}

	return string(jsonBytes)
}

// convertInterface parses, shortens or expands an interface name.
// JS: IOSSectionInterface(name, "parse"|"shorten"|"expand") -> JSON interface or error
func convertInterface(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "name argument required"}
	}

	action := "parse"
	if len(args) > 1 {
		action = args[1].String()
	}

	convert := iossection.ParseInterface
	switch action {
	case "parse":
	case "shorten":
		convert = iossection.ShortenInterface
	case "expand":
		convert = iossection.ExpandInterface
	default:
		return map[string]interface{}{"error": "unknown action: " + action}
	}

	intf, err := convert(args[0].String())
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	jsonBytes, err := json.Marshal(intf)
	if err != nil {
		return map[string]interface{}{"error": "failed to marshal interface: " + err.Error()}
	}

	return string(jsonBytes)
}
