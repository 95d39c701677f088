package separationusecase

import "github.com/cockroachdb/errors/domains"

// marks distinguish which phase of a separation run failed so the
// error can be committed to the right API code
var (
	modelLoadMark  = domains.New("model_load")
	separationMark = domains.New("separation")
	storageMark    = domains.New("storage")
	timeoutMark    = domains.New("timeout")
)
