package internal

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/earthboundkid/versioninfo/v2"
	"github.com/joho/godotenv"
)

var sensitiveRegex = regexp.MustCompile(`(?i)(PASSWORD|API_KEY|ACCESS_KEY|SECRET|TOKEN)`)

func Version() string {
	return versioninfo.Short()
}

func ShowVersion() {
	log.Printf("Version: %s", Version())
}

// LoadEnv reads a .env file from the working directory, if one exists.
// Variables already present in the environment take precedence.
func LoadEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil {
		log.Println("No .env file found")
	}
}

// EnvInt returns the integer value of the named variable, or def when unset.
func EnvInt(name string, def int) (int, error) {
	value, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(value) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("environment variable %s: %w", name, err)
	}
	return n, nil
}

// EnvironmentVars logs every variable starting with prefix, masking values
// whose names look like credentials.
func EnvironmentVars(prefix string) {
	log.Printf("Environment variables (%s*)", prefix)

	environ := os.Environ()
	sort.Strings(environ)

	for _, entry := range environ {
		kv := strings.SplitN(entry, "=", 2)
		if !strings.HasPrefix(kv[0], prefix) {
			continue
		}
		log.Printf("  %s: %s", kv[0], maskValue(kv[0], kv[1]))
	}
}

func maskValue(name, value string) string {
	if sensitiveRegex.MatchString(name) {
		return "********"
	}
	return value
}
