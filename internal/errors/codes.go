// Package errors provides structured error handling for rmkgen.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors (input documents, generator config)
//   - 2XX: IO errors (files, template tree, destination)
//   - 3XX: Network errors
//   - 4XX: Validation errors (cross-document consistency, keycodes)
//   - 5XX: Internal errors (generator defects)
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates network-related errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeMalformedConfig        = "ERR_101_MALFORMED_CONFIG"
	ErrCodeGeneratorConfigInvalid = "ERR_102_GENERATOR_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound            = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission          = "ERR_202_FILE_PERMISSION"
	ErrCodeTemplateIncomplete      = "ERR_206_TEMPLATE_INCOMPLETE"
	ErrCodeDestinationExists       = "ERR_207_DESTINATION_EXISTS"
	ErrCodeTemplateVariantNotFound = "ERR_208_TEMPLATE_VARIANT_NOT_FOUND"
	ErrCodeWriteFailed             = "ERR_209_WRITE_FAILED"

	// Network errors (300-399)
	ErrCodeTemplateDownload = "ERR_301_TEMPLATE_DOWNLOAD"

	// Validation errors (400-499)
	ErrCodeDuplicatePin        = "ERR_402_DUPLICATE_PIN"
	ErrCodeEmptyLayerSet       = "ERR_403_EMPTY_LAYER_SET"
	ErrCodeMatrixTooSmall      = "ERR_404_MATRIX_TOO_SMALL"
	ErrCodeAddressOutOfBounds  = "ERR_405_ADDRESS_OUT_OF_BOUNDS"
	ErrCodeSplitLayoutMismatch = "ERR_406_SPLIT_LAYOUT_MISMATCH"
	ErrCodeDuplicateAddress    = "ERR_407_DUPLICATE_ADDRESS"
	ErrCodeUnknownKeycode      = "ERR_408_UNKNOWN_KEYCODE"
	ErrCodeLayerOutOfRange     = "ERR_409_LAYER_OUT_OF_RANGE"

	// Internal errors (500-599)
	ErrCodeEmission = "ERR_501_EMISSION"
	ErrCodeInternal = "ERR_502_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_MALFORMED_CONFIG")
	numStr := code[4:7]

	switch numStr[0] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeEmission, ErrCodeInternal:
		return SeverityFatal
	}

	// Retryable network errors get warning severity
	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeTemplateDownload:
		return true
	default:
		return false
	}
}

// IsDefectCode reports whether the code marks a generator defect rather
// than a problem with the user's input.
func IsDefectCode(code string) bool {
	return categoryFromCode(code) == CategoryInternal
}
