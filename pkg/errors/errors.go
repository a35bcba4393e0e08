package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")
	ErrInvalidBoolValue  = fmt.Errorf("invalid boolean value")
	ErrInvalidLogLevel   = fmt.Errorf("invalid log level")
	ErrInvalidOutput     = fmt.Errorf("invalid output format")
	ErrInvalidIntValue   = fmt.Errorf("invalid integer value")
	ErrDuplicateCategory = fmt.Errorf("duplicate category")

	// Retrieval errors.
	ErrSnapshotUnavailable = fmt.Errorf("snapshot unavailable")
	ErrRateLimited         = fmt.Errorf("rate limit exceeded")
	ErrRemote              = fmt.Errorf("remote API error")
	ErrNetwork             = fmt.Errorf("network error")
	ErrStats               = fmt.Errorf("failed to fetch repository statistics")

	// Category errors.
	ErrInvalidTopic    = fmt.Errorf("invalid topic")
	ErrEmptyCategory   = fmt.Errorf("category name cannot be empty")
	ErrInvalidPage     = fmt.Errorf("page must be at least 1")
	ErrInvalidDuration = fmt.Errorf("invalid duration")

	// Filter errors.
	ErrFilterCompile = fmt.Errorf("failed to compile filter expression")
	ErrFilterResult  = fmt.Errorf("filter expression must evaluate to a boolean")
)

// RateLimitError is returned when the remote API signals quota exhaustion.
type RateLimitError struct {
	Status  int
	Message string
}

func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("rate limit exceeded (HTTP %d). Please add a GitHub token", e.Status)
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	return msg
}

// Is reports whether target is ErrRateLimited.
func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// RemoteError is returned for any non-success status that is not a rate limit,
// and for a success response whose body cannot be decoded (Err set).
type RemoteError struct {
	Status int
	URL    string
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("GitHub API error: %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("GitHub API error: %d", e.Status)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRemote.
func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// NetworkError wraps a transport failure where no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is reports whether target is ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// StatsError describes a failed commit activity lookup for one repository.
// It never leaves the search client.
type StatsError struct {
	FullName string
	Err      error
}

func (e *StatsError) Error() string {
	return fmt.Sprintf("could not calculate trending for %s: %v", e.FullName, e.Err)
}

func (e *StatsError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStats.
func (e *StatsError) Is(target error) bool { return target == ErrStats }

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrUnknownConfigKeyWithName creates an error naming the unknown key.
func ErrUnknownConfigKeyWithName(key string) error {
	return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: error, warn, info, debug", ErrInvalidLogLevel, level)
}

// ErrInvalidOutputWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidOutputWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidOutput, format)
}

// ErrInvalidTopicWithDetails names the category and offending topic.
func ErrInvalidTopicWithDetails(category, topic string) error {
	return fmt.Errorf("category '%s': %w %q (want lowercase-hyphen token)", category, ErrInvalidTopic, topic)
}

// ErrDuplicateCategoryWithName names the category declared twice in the config.
func ErrDuplicateCategoryWithName(name string) error {
	return fmt.Errorf("%w: '%s'", ErrDuplicateCategory, name)
}
