package jobstorage

import "github.com/cockroachdb/errors/domains"

var JobNotFoundMark = domains.New("job_not_found")
var JobUnmarshalMark = domains.New("job_unmarshal_fail")
var DefaultErrorMark = domains.New("default_error")
