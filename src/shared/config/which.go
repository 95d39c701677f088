package config

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/veedubyou/stem-split-be/src/shared/values/envvar"
)

func FindBin(bin string) string {
	cmd := exec.Command("which", bin)
	output, err := cmd.CombinedOutput()

	stringOutput := string(output)
	if err != nil {
		panic(fmt.Sprintf("Failed to find %s: %s", bin, stringOutput))
	}

	trimmedOutput := strings.TrimSpace(stringOutput)
	if trimmedOutput == "" {
		panic(fmt.Sprintf("No bin found for %s", bin))
	}

	return trimmedOutput
}

// SpleeterBinPath prefers the env override. PATH discovery only runs
// when no override is set, so hosts without spleeter on the PATH can
// still point at a binary directly.
func SpleeterBinPath() string {
	if override := envvar.GetOrDefault(envvar.SPLEETER_BIN_PATH, ""); override != "" {
		return override
	}

	return FindBin("spleeter")
}
