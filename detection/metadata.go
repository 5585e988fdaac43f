package detection

import (
	"fmt"
	"math"

	"github.com/oomph-ac/ofly/oerror"
)

const kindDetection = "detection"

// Metadata holds the violation accounting of a detection for one entity.
type Metadata struct {
	Violations    float64
	MaxViolations float64

	Buffer     float64
	FailBuffer float64
	MaxBuffer  float64

	// TrustDuration is the amount of ticks needed without flags before the detection trusts the entity again.
	// A value of zero or less disables trust and every flag counts as a full violation.
	TrustDuration int64
	// LastFlagged is the tick the detection was last flagged at.
	LastFlagged int64

	// Mitigation is true if flags are only meant to notify the host of a mitigated movement instead of
	// accusing the entity of cheating.
	Mitigation bool
}

// Provider supplies the detection metadata values. It is implemented by *settings.Settings.
type Provider interface {
	Double(kind, key string) (float64, error)
	Int(kind, key string) (int, error)
}

// MetadataFromProvider reads the initial metadata of a detection from p.
func MetadataFromProvider(p Provider) (Metadata, error) {
	var (
		m   Metadata
		err error
	)
	if m.MaxViolations, err = p.Double(kindDetection, "max-violations"); err != nil {
		return m, fmt.Errorf("read detection metadata: %w", err)
	}
	if m.FailBuffer, err = p.Double(kindDetection, "fail-buffer"); err != nil {
		return m, fmt.Errorf("read detection metadata: %w", err)
	}
	if m.MaxBuffer, err = p.Double(kindDetection, "max-buffer"); err != nil {
		return m, fmt.Errorf("read detection metadata: %w", err)
	}
	trust, err := p.Int(kindDetection, "trust-duration")
	if err != nil {
		return m, fmt.Errorf("read detection metadata: %w", err)
	}
	m.TrustDuration = int64(trust)
	return m, m.Validate()
}

// Validate returns an error if the metadata cannot produce flags.
func (m Metadata) Validate() error {
	if m.MaxViolations <= 0 || math.IsNaN(m.MaxViolations) {
		return oerror.New("max-violations must be positive, got %v", m.MaxViolations)
	}
	if m.FailBuffer < 0 || m.MaxBuffer < m.FailBuffer {
		return oerror.New("fail-buffer must be within [0, max-buffer], got %v (max-buffer %v)", m.FailBuffer, m.MaxBuffer)
	}
	return nil
}

// fail adds a failure to the buffer and returns true if the buffer reached the fail threshold.
func (m *Metadata) fail() bool {
	m.Buffer = math.Min(m.Buffer+1.0, m.MaxBuffer)
	return m.Buffer >= m.FailBuffer
}

// pass removes sub from the buffer.
func (m *Metadata) pass(sub float64) {
	m.Buffer = math.Max(0, m.Buffer-sub)
}

// addViolation adds a violation flagged at tick, weighted by how recently the detection was last flagged.
func (m *Metadata) addViolation(tick int64) {
	if m.TrustDuration > 0 {
		m.Violations += math.Max(0, float64(m.TrustDuration)-float64(tick-m.LastFlagged)) / float64(m.TrustDuration)
		return
	}
	m.Violations++
}
