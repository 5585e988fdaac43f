package flight

import (
	"fmt"
	"math"

	"github.com/oomph-ac/ofly/oerror"
)

// CheckKind is the configuration scope all flight thresholds are read from.
const CheckKind = "flight"

const (
	KeyAscendLadder  = "ascend-ladder"
	KeyDescendLadder = "descend-ladder"
	KeyMaxJump       = "max-jump"
	KeyAscendTime    = "ascend-time"
)

// ThresholdProvider supplies configured values for a check kind.
type ThresholdProvider interface {
	Double(kind, key string) (float64, error)
	Int(kind, key string) (int, error)
}

// Thresholds are the tunable limits of the flight rules. They are fixed for the lifetime of an Evaluator.
type Thresholds struct {
	// AscendLadderSpeed is the maximum vertical speed while climbing up.
	AscendLadderSpeed float64
	// DescendLadderSpeed is the maximum vertical speed while climbing down.
	DescendLadderSpeed float64
	// MaxJumpHeight is the maximum vertical speed of an ascent without jump boost.
	MaxJumpHeight float64
	// MaxAscendTicks is the maximum amount of ticks an ascent may last.
	MaxAscendTicks uint32
}

// NewThresholds reads the flight thresholds from the provider. An error is returned if any of them is
// missing or invalid.
func NewThresholds(p ThresholdProvider) (Thresholds, error) {
	var (
		t   Thresholds
		err error
	)
	if t.AscendLadderSpeed, err = p.Double(CheckKind, KeyAscendLadder); err != nil {
		return t, fmt.Errorf("read %s: %w", KeyAscendLadder, err)
	}
	if t.DescendLadderSpeed, err = p.Double(CheckKind, KeyDescendLadder); err != nil {
		return t, fmt.Errorf("read %s: %w", KeyDescendLadder, err)
	}
	if t.MaxJumpHeight, err = p.Double(CheckKind, KeyMaxJump); err != nil {
		return t, fmt.Errorf("read %s: %w", KeyMaxJump, err)
	}
	ticks, err := p.Int(CheckKind, KeyAscendTime)
	if err != nil {
		return t, fmt.Errorf("read %s: %w", KeyAscendTime, err)
	}
	if ticks <= 0 || int64(ticks) > math.MaxUint32 {
		return t, oerror.New("%s must be a positive amount of ticks, got %d", KeyAscendTime, ticks)
	}
	t.MaxAscendTicks = uint32(ticks)
	return t, t.Validate()
}

// Validate returns an error if any threshold is not usable.
func (t Thresholds) Validate() error {
	for _, v := range []struct {
		key string
		val float64
	}{
		{KeyAscendLadder, t.AscendLadderSpeed},
		{KeyDescendLadder, t.DescendLadderSpeed},
		{KeyMaxJump, t.MaxJumpHeight},
	} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) || v.val <= 0 {
			return oerror.New("%s must be a positive number, got %v", v.key, v.val)
		}
	}
	if t.MaxAscendTicks == 0 {
		return oerror.New("%s must be a positive amount of ticks", KeyAscendTime)
	}
	return nil
}

// MaxJump returns the maximum vertical speed of an ascent, taking jump boost into account.
func (t Thresholds) MaxJump(jumpBoost bool) float64 {
	if jumpBoost {
		return t.MaxJumpHeight + 0.4
	}
	return t.MaxJumpHeight
}
