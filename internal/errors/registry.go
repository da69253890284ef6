package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]ErrorTemplate{
	// Registration (E100-E199)

	"E100": {
		Category: CategoryRegistration,
		Message:  "Member is not a checkable choice",
		Detail:   "Groups only accept elements whose model value is a {value, checked} pair.",
	},
	"E101": {
		Category: CategoryRegistration,
		Message:  "Member name conflicts with group name",
		Detail:   "A member's name must be empty or equal to the name of the group it joins.",
	},
	"E102": {
		Category: CategoryRegistration,
		Message:  "Unknown group",
		Detail:   "No group with this name is configured.",
	},
	"E103": {
		Category: CategoryRegistration,
		Message:  "Member index out of range",
		Detail:   "The index does not address a registered member of the group.",
	},

	// Configuration (E200-E299)

	"E200": {
		Category: CategoryConfig,
		Message:  "Cannot read configuration",
		Detail:   "The configuration file could not be opened.",
	},
	"E201": {
		Category: CategoryConfig,
		Message:  "Cannot parse configuration",
		Detail:   "The configuration file is not valid YAML or JSON.",
	},
	"E202": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is missing, malformed, or inconsistent with another.",
	},
	"E203": {
		Category: CategoryConfig,
		Message:  "Invalid rule",
		Detail:   "A validation rule has an unknown kind or its expression does not compile.",
	},
	"E204": {
		Category: CategoryConfig,
		Message:  "Cannot open sink",
		Detail:   "The submission sink or change dispatcher could not be initialised.",
	},

	// Scenarios (E300-E399)

	"E300": {
		Category: CategoryScenario,
		Message:  "Cannot parse scenario",
		Detail:   "The scenario file is not valid YAML.",
	},
	"E301": {
		Category: CategoryScenario,
		Message:  "Unknown scenario step",
		Detail:   "Each step needs exactly one action such as declare, check, set, open, key or expect.",
	},
	"E302": {
		Category: CategoryScenario,
		Message:  "Expectation failed",
		Detail:   "The state after a step did not match the expected state.",
	},
	"E303": {
		Category: CategoryScenario,
		Message:  "Step failed",
		Detail:   "A scenario action returned an error.",
	},

	// CLI (E400-E499)

	"E400": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command was called with missing or malformed arguments.",
	},
	"E401": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},

	// HTTP API (E500-E599)

	"E500": {
		Category: CategoryAPI,
		Message:  "Malformed request",
		Detail:   "The request body or path parameters could not be decoded.",
	},
	"E501": {
		Category: CategoryAPI,
		Message:  "Group is not interactive",
		Detail:   "The group or member is disabled or read-only, or the operation needs a select.",
	},
	"E502": {
		Category: CategoryAPI,
		Message:  "Submission rejected",
		Detail:   "One or more groups failed validation.",
	},
	"E503": {
		Category: CategoryAPI,
		Message:  "Submission not found",
		Detail:   "No stored submission has this ID.",
	},
	"E504": {
		Category: CategoryAPI,
		Message:  "Submissions are not configured",
		Detail:   "Configure submit.dir, submit.s3 or submit.sql to accept submissions.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
