package testutil

import (
	"os"
	"path/filepath"

	"github.com/ethaccount/zksync/src/utils"
	"github.com/joho/godotenv"
)

// GetEnv reads key from the environment after loading the project .env
// file, if there is one. Variables already set take precedence.
func GetEnv(key string) string {
	envFile := filepath.Join(utils.FindProjectRoot(), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			panic("Error loading .env file: " + err.Error())
		}
	}

	return os.Getenv(key)
}
