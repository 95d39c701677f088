package engine

import "github.com/cockroachdb/errors"

type SplitType string

const (
	InvalidSplitType  SplitType = ""
	TwoStemSplitType  SplitType = "2stems"
	FourStemSplitType SplitType = "4stems"
	FiveStemSplitType SplitType = "5stems"
)

// DefaultSplitType is applied when a request doesn't name a configuration
const DefaultSplitType = FourStemSplitType

func AllSplitTypes() []SplitType {
	return []SplitType{TwoStemSplitType, FourStemSplitType, FiveStemSplitType}
}

func ConvertToSplitType(val string) (SplitType, error) {
	switch val {
	case string(TwoStemSplitType):
		return TwoStemSplitType, nil
	case string(FourStemSplitType):
		return FourStemSplitType, nil
	case string(FiveStemSplitType):
		return FiveStemSplitType, nil
	default:
		return InvalidSplitType, errors.Newf("Value does not match any split type: %s", val)
	}
}

var stemNames = map[SplitType][]string{
	TwoStemSplitType:  {"vocals", "accompaniment"},
	FourStemSplitType: {"vocals", "drums", "bass", "other"},
	FiveStemSplitType: {"vocals", "drums", "bass", "piano", "other"},
}

// StemNames is the exact set of stems a successful separation run
// must produce for this configuration
func (s SplitType) StemNames() []string {
	names, ok := stemNames[s]
	if !ok {
		return nil
	}

	copied := make([]string, len(names))
	copy(copied, names)
	return copied
}

func (s SplitType) StemCount() int {
	return len(stemNames[s])
}

var descriptions = map[SplitType]string{
	TwoStemSplitType:  "Vocals and accompaniment",
	FourStemSplitType: "Vocals, drums, bass, other",
	FiveStemSplitType: "Vocals, drums, bass, piano, other",
}

func (s SplitType) Description() string {
	return descriptions[s]
}
