package statement

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// NameMap translates the display names broker statements print into
// exchange instrument codes.
type NameMap struct {
	codes map[string]string
}

func NewNameMap(codes map[string]string) *NameMap {
	return &NameMap{codes: codes}
}

func LoadNameMap(filePath string) (*NameMap, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read name map %s: %w", filePath, err)
	}

	codes := map[string]string{}
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, fmt.Errorf("failed to parse name map %s: %w", filePath, err)
	}

	return &NameMap{codes: codes}, nil
}

// company-name suffixes statements sometimes include but the lookup table
// omits
var nameSuffixes = []string{"股份有限公司", "公司"}

// Lookup returns the instrument code for a display name, trying an exact
// match first and then a suffix-stripped one. Empty string means unknown.
func (m *NameMap) Lookup(name string) string {
	name = strings.TrimSpace(name)

	if code, ok := m.codes[name]; ok {
		return code
	}

	for _, suffix := range nameSuffixes {
		trimmed := strings.TrimSuffix(name, suffix)
		if trimmed == name {
			continue
		}
		trimmed = strings.TrimSpace(trimmed)
		if code, ok := m.codes[trimmed]; ok {
			return code
		}
	}

	return ""
}
