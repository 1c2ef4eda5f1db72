package errors

import (
	"maps"
	"slices"
)

// Registered codes.
const (
	ConfigNotFound = "E100"
	ConfigParse    = "E101"
	ConfigInvalid  = "E102"

	ProtocolMalformed   = "E200"
	ProtocolUnknownNode = "E201"
	ProtocolFrameType   = "E202"

	SnapshotNotFound = "E300"
	SnapshotCodec    = "E301"
	SnapshotStorage  = "E302"

	CLIUnknownApp   = "E400"
	CLINotTerminal  = "E401"
	CLIInvalidInput = "E402"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Config (E100-E199)
	ConfigNotFound: {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Detail:     "The config file passed with --config does not exist.",
		Suggestion: "Omit --config to use vtree.json, vtree.yaml or vtree.toml from the working directory.",
	},
	ConfigParse: {
		Category: CategoryConfig,
		Message:  "Config file could not be parsed",
		Detail:   "The file is not valid for its extension. JSON, YAML and TOML are supported.",
	},
	ConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid config value",
	},

	// Protocol (E200-E299)
	ProtocolMalformed: {
		Category: CategoryProtocol,
		Message:  "Malformed frame or operation",
		Detail:   "The peer sent bytes that do not decode as a protocol message.",
	},
	ProtocolUnknownNode: {
		Category: CategoryProtocol,
		Message:  "Unknown node id",
		Detail:   "An operation or event referenced a node the receiver does not know. The replica may be out of sync.",
	},
	ProtocolFrameType: {
		Category: CategoryProtocol,
		Message:  "Unexpected frame type",
	},

	// Snapshots (E300-E399)
	SnapshotNotFound: {
		Category: CategoryStorage,
		Message:  "Snapshot not found",
	},
	SnapshotCodec: {
		Category: CategoryStorage,
		Message:  "Snapshot could not be encoded or decoded",
	},
	SnapshotStorage: {
		Category: CategoryStorage,
		Message:  "Snapshot storage backend failed",
	},

	// CLI (E400-E499)
	CLIUnknownApp: {
		Category:   CategoryCLI,
		Message:    "Unknown demo app",
		Suggestion: "Run `vtree demo --help` to list the available apps.",
	},
	CLINotTerminal: {
		Category:   CategoryCLI,
		Message:    "Interactive mode requires a terminal",
		Suggestion: "Pass --script to run the demo without a terminal.",
	},
	CLIInvalidInput: {
		Category: CategoryCLI,
		Message:  "Invalid demo script",
		Detail:   "Each script line is a key name (tab, enter, backspace, ...) or `type <text>`.",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	return slices.Sorted(maps.Keys(registry))
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
