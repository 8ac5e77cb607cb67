package settings

import (
	"os"

	"github.com/joho/godotenv"
)

// envFiles are tried in order; the first one that loads wins.
var envFiles = []string{".env", ".env.local"}

// LoadDotEnv loads environment overrides from a dotenv file in the working
// directory. Variables already set in the process environment are never
// overridden, so the precedence stays: real environment, then dotenv file,
// then stored settings. Returns the filename that was loaded, or "" when
// no file was found.
func LoadDotEnv() string {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			continue
		}
		return name
	}
	return ""
}
