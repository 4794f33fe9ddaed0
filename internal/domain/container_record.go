package domain

// HealthStatusNone is reported for containers without a configured healthcheck.
const HealthStatusNone = "none"

// ShortIDLength is the number of leading characters of a container ID kept for display.
const ShortIDLength = 12

// ContainerRecord is the state of one container as observed by a single collection pass.
type ContainerRecord struct {
	ID           string
	Name         string
	Status       string
	HealthStatus string
	Labels       map[string]string // keys are already sanitized
}

// Clone returns a deep copy so the label map is never shared between snapshots.
func (r ContainerRecord) Clone() ContainerRecord {
	labels := make(map[string]string, len(r.Labels))
	for k, v := range r.Labels {
		labels[k] = v
	}
	r.Labels = labels
	return r
}

// ShortID truncates a full container ID to ShortIDLength characters.
func ShortID(id string) string {
	if len(id) > ShortIDLength {
		return id[:ShortIDLength]
	}
	return id
}
