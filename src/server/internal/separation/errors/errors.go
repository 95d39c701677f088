package separationerrors

import (
	"github.com/veedubyou/stem-split-be/src/server/internal/errors/api"
)

const (
	// bad request kinds - none of these ever reach the model
	NoFileProvidedCode      = api.ErrorCode("no_file_provided")
	EmptyFileCode           = api.ErrorCode("empty_file")
	UnsupportedFileTypeCode = api.ErrorCode("unsupported_file_type")
	InvalidModelCode        = api.ErrorCode("invalid_model")
	InvalidOutputFormatCode = api.ErrorCode("invalid_output_format")

	// fatal at first use of a configuration
	ModelLoadFailedCode = api.ErrorCode("model_load_failed")

	// per-request failures
	SeparationFailedCode  = api.ErrorCode("separation_failed")
	SeparationTimeoutCode = api.ErrorCode("separation_timeout")
	StorageFailedCode     = api.ErrorCode("storage_failed")
	ServerBusyCode        = api.ErrorCode("server_busy")
)
