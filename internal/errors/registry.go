package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// State Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryState,
		Message:  "Stores accessed outside provider",
		Detail:   "The store container was read from a context that was never populated with stores.WithRoot.",
	},
	"E002": {
		Category: CategoryState,
		Message:  "Invalid theme",
		Detail:   "Themes must be either \"light\" or \"dark\".",
	},
	"E003": {
		Category: CategoryState,
		Message:  "Invalid locale",
		Detail:   "Locales must be either \"zh\" or \"en\".",
	},
	"E004": {
		Category: CategoryState,
		Message:  "Persistence field not found",
		Detail:   "A persisted field name does not match any JSON field of the store state.",
	},

	// ============================================
	// API Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryAPI,
		Message:  "Missing user ID",
		Detail:   "The operation targets a specific user but no ID was given.",
	},
	"E041": {
		Category: CategoryAPI,
		Message:  "Not logged in",
		Detail:   "No auth token is stored; the backend will reject authenticated calls.",
	},

	// ============================================
	// Storage Errors (E080-E099)
	// ============================================

	"E080": {
		Category: CategoryStorage,
		Message:  "Unknown storage driver",
		Detail:   "Supported drivers are memory, file, sqlite and s3.",
	},
	"E081": {
		Category: CategoryStorage,
		Message:  "Storage open failed",
		Detail:   "The durable storage backend could not be initialized.",
	},
	"E082": {
		Category: CategoryStorage,
		Message:  "Storage closed",
		Detail:   "An operation was attempted on a storage backend after Close.",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be read or parsed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid base URL",
		Detail:   "baseURL must be an absolute http(s) URL or empty.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid timeout",
		Detail:   "timeout must be a positive Go duration such as \"10s\".",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Unsupported config format",
		Detail:   "Configuration files must end in .json, .yaml or .yml.",
	},
	"E124": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "log.level must be one of debug, info, warn or error.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Detail:   "A command argument has an unexpected value.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Config not found",
		Detail:   "No usershell configuration file found.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
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
