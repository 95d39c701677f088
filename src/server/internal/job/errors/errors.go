package joberrors

import (
	"github.com/veedubyou/stem-split-be/src/server/internal/errors/api"
)

const (
	JobNotFoundCode  = api.ErrorCode("job_not_found")
	StemNotFoundCode = api.ErrorCode("stem_not_found")
	BadJobDataCode   = api.ErrorCode("bad_job_data")
)
