package testing

import "os"

// SetTestEnv puts the process in development mode so that request
// contexts and config resolution behave outside a deployment
func SetTestEnv() {
	os.Setenv("ENVIRONMENT", "development")
}
