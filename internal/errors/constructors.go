package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *GuideError {
	return New(CategoryConfig, SeverityFatal, "settings document not found").
		WithContext("path", path)
}

func ConfigParseFailed(path string, cause error) *GuideError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "settings document is not valid YAML").
		WithContext("path", path)
}

func VariablesParseFailed(path string, cause error) *GuideError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "variables document is not valid YAML").
		WithContext("path", path)
}

// Scan errors

func InputNotFound(path string) *GuideError {
	return New(CategoryScan, SeverityFatal, "input directory not found").
		WithContext("path", path)
}

func ScanFailed(path string, cause error) *GuideError {
	return Wrap(cause, CategoryScan, SeverityFatal, "input tree walk failed").
		WithContext("path", path)
}

func OutputNotFound(path string) *GuideError {
	return New(CategoryScan, SeverityFatal, "assembled output tree not found").
		WithContext("path", path)
}

// I/O errors

func WriteFailed(path string, cause error) *GuideError {
	return Wrap(cause, CategoryIO, SeverityFatal, "output write failed").
		WithContext("path", path)
}

func MkdirFailed(path string, cause error) *GuideError {
	return Wrap(cause, CategoryIO, SeverityFatal, "output directory creation failed").
		WithContext("path", path)
}

// Synthesis errors

func SynthesisIneligible(fields []string) *GuideError {
	return New(CategorySynthesis, SeverityWarning, "descriptor synthesis skipped: identity fields missing or invalid").
		WithContext("fields", fields)
}

// Internal errors

func InternalError(message string, cause error) *GuideError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
