package cli

import (
	"errors"

	"github.com/roach88/groqgen/internal/codegen"
	"github.com/roach88/groqgen/internal/groq"
	"github.com/roach88/groqgen/internal/pluck"
	"github.com/roach88/groqgen/internal/schema"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeConfig       = "E002" // Invalid configuration
	ErrCodeSchema       = "E003" // Schema missing, unreadable or invalid
	ErrCodeQuerySource  = "E004" // Manifest or source file could not be read
	ErrCodeQueryFailed  = "E005" // One or more queries failed to convert
	ErrCodeWriteFailed  = "E006" // File write error
	ErrCodeHistory      = "E007" // Run history could not be read or written
	ErrCodeDrift        = "E008" // Output differs from the latest recorded run
	ErrCodeInvalidKey   = "E009" // Empty, duplicate or non-identifier query key
	ErrCodeParse        = "E010" // Query text does not parse
	ErrCodeStaleOutput  = "E011" // Declaration file on disk is out of date
	ErrCodeInvalidInput = "E013" // Invalid command arguments
)

// errorCode maps an error to the most specific error code.
func errorCode(err error) string {
	var (
		compileErr *schema.CompileError
		parseErr   *groq.ParseError
		pluckErr   *pluck.Error
	)
	switch {
	case errors.As(err, &compileErr):
		return ErrCodeSchema
	case errors.Is(err, codegen.ErrEmptyKey),
		errors.Is(err, codegen.ErrDuplicateKey),
		errors.Is(err, codegen.ErrInvalidKey):
		return ErrCodeInvalidKey
	case errors.As(err, &parseErr):
		return ErrCodeParse
	case errors.As(err, &pluckErr):
		return ErrCodeQuerySource
	default:
		return ErrCodeGeneric
	}
}
