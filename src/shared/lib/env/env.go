package env

import (
	"fmt"
	"os"
)

type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
)

func Get() Environment {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		panic("No ENVIRONMENT var is set")
	}

	switch Environment(environment) {
	case Production:
		return Production
	case Development:
		return Development
	default:
		panic(fmt.Sprintf("Unrecognized ENVIRONMENT value: %s", environment))
	}
}
