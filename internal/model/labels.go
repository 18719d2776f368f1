package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeLabels renders labels for the Labels column as a JSON array. No
// labels is the empty string.
func EncodeLabels(labels []string) (string, error) {
	if len(labels) == 0 {
		return "", nil
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("failed to encode labels: %w", err)
	}
	return string(data), nil
}

// ParseLabels reads a Labels cell. Both the JSON array written by the
// exporter and a plain comma-separated list are accepted.
func ParseLabels(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var labels []string
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &labels); err != nil {
			return nil, fmt.Errorf("invalid labels %q: %w", s, err)
		}
	} else {
		labels = strings.Split(s, ",")
	}

	out := labels[:0]
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
