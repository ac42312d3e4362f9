package config

import (
	"fmt"
	"os"
	"strings"
)

// WriteEnvValue updates a key=value pair in a dotenv file, appending the key
// when it is not present. Key rotation uses this to persist the new master or
// static key only after every stored secret has been rewritten.
func WriteEnvValue(path, key, value string) error {
	var lines []string
	updated := false

	if raw, err := os.ReadFile(path); err == nil {
		for _, line := range strings.Split(strings.TrimRight(string(raw), "\n"), "\n") {
			if strings.HasPrefix(line, key+"=") {
				lines = append(lines, fmt.Sprintf("%s=%s", key, value))
				updated = true
				continue
			}
			lines = append(lines, line)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read env file: %w", err)
	}

	if !updated {
		lines = append(lines, fmt.Sprintf("%s=%s", key, value))
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}
	return nil
}
