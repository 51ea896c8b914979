package tool

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
)

// ReadFile reads a UTF-8 text file for agents that answer "read file X"
// requests
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read file", goerr.V("path", path))
	}
	return string(data), nil
}
