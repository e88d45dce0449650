package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
)

func formatNow(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// stem strips the key extension: "Late_delivery.json" -> "Late_delivery".
func stem(filename string) string {
	return strings.TrimSuffix(filename, scenario.KeyExtension)
}

// finish trims the rendered message. An empty message is an error since the
// content API rejects commits without one.
func finish(name, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("template %q rendered an empty commit message", name)
	}
	return message, nil
}
