package engine

import "github.com/cockroachdb/errors"

type OutputFormat string

const (
	InvalidOutputFormat OutputFormat = ""
	MP3OutputFormat     OutputFormat = "mp3"
	WAVOutputFormat     OutputFormat = "wav"
)

const DefaultOutputFormat = MP3OutputFormat

func ConvertToOutputFormat(val string) (OutputFormat, error) {
	switch val {
	case string(MP3OutputFormat):
		return MP3OutputFormat, nil
	case string(WAVOutputFormat):
		return WAVOutputFormat, nil
	default:
		return InvalidOutputFormat, errors.Newf("Value does not match any output format: %s", val)
	}
}

func (f OutputFormat) Extension() string {
	return "." + string(f)
}
