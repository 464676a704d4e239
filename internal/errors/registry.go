package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Configuration Errors (R100-R109)

	"R100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "The configuration file given with --config or REACTBENCH_CONFIG does not exist.",
	},
	"R101": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The configuration file is not valid YAML or has fields of the wrong type.",
	},
	"R102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"R103": {
		Category: CategoryConfig,
		Message:  "Tracing setup failed",
		Detail:   "The span exporter for --trace could not be created.",
	},

	// Bench Errors (R110-R119)

	"R110": {
		Category: CategoryBench,
		Message:  "Unknown scenario",
	},
	"R111": {
		Category: CategoryBench,
		Message:  "Invalid scenario parameters",
		Detail:   "Size and iterations must be positive.",
	},
	"R112": {
		Category: CategoryBench,
		Message:  "Scenario check failed",
		Detail:   "The reactive graph did not reach the expected final state.",
	},

	// Server Errors (R120-R129)

	"R120": {
		Category: CategoryServer,
		Message:  "Server failed",
	},
	"R121": {
		Category: CategoryServer,
		Message:  "Invalid request",
	},

	// CLI Errors (R130-R139)

	"R130": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
