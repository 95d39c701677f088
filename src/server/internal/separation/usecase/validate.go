package separationusecase

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-audio/wav"
	"github.com/veedubyou/stem-split-be/src/server/internal/errors/api"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
	separationerrors "github.com/veedubyou/stem-split-be/src/server/internal/separation/errors"
)

var allowedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
	".wma":  true,
}

// validateRequest rejects anything that shouldn't reach the model and
// resolves the request's configuration and output format defaults
func validateRequest(req SeparateRequest) (engine.SplitType, engine.OutputFormat, *api.Error) {
	if req.FileName == "" {
		err := errors.New("No file name on the upload")
		return engine.InvalidSplitType, engine.InvalidOutputFormat, api.CommitError(err,
			separationerrors.NoFileProvidedCode,
			"No audio file was provided")
	}

	if len(req.Contents) == 0 {
		err := errors.New("Uploaded file has no contents")
		return engine.InvalidSplitType, engine.InvalidOutputFormat, api.CommitError(err,
			separationerrors.EmptyFileCode,
			"The uploaded file is empty")
	}

	extension := strings.ToLower(filepath.Ext(req.FileName))
	if !allowedExtensions[extension] {
		err := errors.Newf("File extension is not an allowed audio type: %s", extension)
		return engine.InvalidSplitType, engine.InvalidOutputFormat, api.CommitError(err,
			separationerrors.UnsupportedFileTypeCode,
			"This file type is not supported. Supported types: mp3, wav, flac, ogg, m4a, wma")
	}

	if extension == ".wav" && !isDecodableWAV(req.Contents) {
		err := errors.New("File claims to be WAV but its header doesn't decode")
		return engine.InvalidSplitType, engine.InvalidOutputFormat, api.CommitError(err,
			separationerrors.UnsupportedFileTypeCode,
			"The uploaded WAV file could not be decoded")
	}

	splitType, err := resolveSplitType(req.Model)
	if err != nil {
		return engine.InvalidSplitType, engine.InvalidOutputFormat, api.CommitError(err,
			separationerrors.InvalidModelCode,
			"Invalid model. Choose from: 2stems, 4stems, 5stems")
	}

	format, err := resolveOutputFormat(req.Format)
	if err != nil {
		return engine.InvalidSplitType, engine.InvalidOutputFormat, api.CommitError(err,
			separationerrors.InvalidOutputFormatCode,
			"Invalid format. Choose mp3 or wav")
	}

	return splitType, format, nil
}

func resolveSplitType(model string) (engine.SplitType, error) {
	if model == "" {
		return engine.DefaultSplitType, nil
	}

	return engine.ConvertToSplitType(model)
}

func resolveOutputFormat(format string) (engine.OutputFormat, error) {
	if format == "" {
		return engine.DefaultOutputFormat, nil
	}

	return engine.ConvertToOutputFormat(strings.ToLower(format))
}

func isDecodableWAV(contents []byte) bool {
	decoder := wav.NewDecoder(bytes.NewReader(contents))
	return decoder.IsValidFile()
}

// sanitizeFileName flattens the uploaded name into something safe to
// join onto the upload dir - no separators, no traversal
func sanitizeFileName(name string) string {
	base := filepath.Base(name)

	builder := strings.Builder{}
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}

	sanitized := builder.String()
	if strings.Trim(sanitized, "._") == "" {
		return "upload"
	}

	return sanitized
}
