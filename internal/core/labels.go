package core

import (
	"strings"

	"github.com/auto-dns/docker-slim-exporter/internal/util"
)

// LabelPrefix namespaces container labels the way cAdvisor exposes them.
const LabelPrefix = "container_label_"

// SanitizeLabelName turns an arbitrary container label key into a valid
// Prometheus label name: every character outside [A-Za-z0-9_] becomes '_'
// and LabelPrefix is prepended. Applying it twice adds the prefix twice.
func SanitizeLabelName(name string) string {
	var b strings.Builder
	b.Grow(len(LabelPrefix) + len(name))
	b.WriteString(LabelPrefix)
	for _, r := range name {
		if isLabelRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isLabelRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_'
}

// LabelCollision describes a raw label key dropped because another key
// sanitized to the same name.
type LabelCollision struct {
	Name    string
	Kept    string
	Dropped string
}

// SanitizeLabels applies SanitizeLabelName to every key. Values are kept as is.
// When several raw keys map to the same name, the first key in sorted order
// wins.
func SanitizeLabels(labels map[string]string) map[string]string {
	out, _ := sanitizeLabels(labels)
	return out
}

// LabelCollisions reports the raw keys SanitizeLabels drops.
func LabelCollisions(labels map[string]string) []LabelCollision {
	_, collisions := sanitizeLabels(labels)
	return collisions
}

func sanitizeLabels(labels map[string]string) (map[string]string, []LabelCollision) {
	out := make(map[string]string, len(labels))
	kept := make(map[string]string, len(labels))
	var collisions []LabelCollision
	for _, k := range util.SortedKeys(labels) {
		name := SanitizeLabelName(k)
		if winner, ok := kept[name]; ok {
			collisions = append(collisions, LabelCollision{Name: name, Kept: winner, Dropped: k})
			continue
		}
		kept[name] = k
		out[name] = labels[k]
	}
	return out, collisions
}
