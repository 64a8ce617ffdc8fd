package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string, cause error) *DocWebError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file not readable").
		WithContext("path", path)
}

// ConfigSyntax reports a malformed section, key or value at file:line.
func ConfigSyntax(file string, line int, message string) *DocWebError {
	return New(CategoryConfig, SeverityFatal, message).
		WithContext("file", file).
		WithContext("line", line)
}

func ValidationFailed(field, reason string) *DocWebError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Build pipeline errors

// JobFailed reports an external command that exited non-zero. It is marked
// retryable because a concurrent batch re-runs serially once before giving up.
func JobFailed(command string, exitCode int, cause error) *DocWebError {
	return WrapRetryable(cause, CategoryJob, SeverityFatal, "external command failed").
		WithContext("command", command).
		WithContext("exit_code", exitCode)
}

func BuildFailed(stage string, cause error) *DocWebError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "build failed").
		WithContext("stage", stage)
}

// ResourceError reports a path that could not be read, created or written.
func ResourceError(path, operation string, cause error) *DocWebError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("path", path).
		WithContext("operation", operation)
}

// Internal errors

func InternalError(message string, cause error) *DocWebError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
