//go:build tools

// keeps the fake generator pinned in go.mod
package tools

import (
	_ "github.com/maxbrunsfeld/counterfeiter/v6"
)
