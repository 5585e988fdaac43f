package trace

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/ofly/oerror"
	"github.com/tidwall/gjson"
)

// Kind is the kind of a trace entry.
type Kind string

const (
	KindBlock  Kind = "block"
	KindFill   Kind = "fill"
	KindJoin   Kind = "join"
	KindMove   Kind = "move"
	KindMotion Kind = "motion"
	KindEffect Kind = "effect"
	KindRide   Kind = "ride"
	KindQuit   Kind = "quit"
)

// Entry is a single line of a trace. Only the fields used by its kind are set.
type Entry struct {
	Kind   Kind
	Entity string

	// Pos is the block position of block entries and the first corner of fill entries.
	Pos cube.Pos
	// To is the second corner of fill entries.
	To cube.Pos
	// Block and Properties name the block of block and fill entries.
	Block      string
	Properties map[string]any

	RuntimeID uint64
	// Position is the feet position of move entries.
	Position mgl64.Vec3
	// Velocity is the motion of motion entries.
	Velocity mgl64.Vec3

	EffectType int32
	Amplifier  int32
	Duration   int32
	Remove     bool

	Riding bool
}

// Parse parses a single JSON line of a trace.
func Parse(line []byte) (Entry, error) {
	if !gjson.ValidBytes(line) {
		return Entry{}, oerror.New("invalid json: %s", line)
	}
	res := gjson.ParseBytes(line)
	e := Entry{Kind: Kind(res.Get("type").String()), Entity: res.Get("entity").String()}

	switch e.Kind {
	case KindBlock, KindFill:
		pos, err := blockPos(res.Get("pos"))
		if err != nil {
			return e, err
		}
		e.Pos, e.To = pos, pos
		if e.Kind == KindFill {
			if e.To, err = blockPos(res.Get("to")); err != nil {
				return e, err
			}
		}
		e.Block = res.Get("name").String()
		if e.Block == "" {
			return e, oerror.New("%s entry without block name", e.Kind)
		}
		if props, ok := res.Get("properties").Value().(map[string]any); ok {
			e.Properties = props
		}
		return e, nil
	case KindMove, KindMotion:
		key := "pos"
		if e.Kind == KindMotion {
			key = "velocity"
		}
		v, err := vec(res.Get(key))
		if err != nil {
			return e, err
		}
		e.Position, e.Velocity = v, v
	case KindEffect:
		e.EffectType = int32(res.Get("effect").Int())
		e.Amplifier = int32(res.Get("amplifier").Int())
		e.Duration = int32(res.Get("duration").Int())
		e.Remove = res.Get("remove").Bool()
	case KindRide:
		e.Riding = res.Get("riding").Bool()
	case KindJoin:
		e.RuntimeID = res.Get("rid").Uint()
	case KindQuit:
	default:
		return e, oerror.New("unknown entry type %q", e.Kind)
	}

	if e.Entity == "" {
		return e, oerror.New("%s entry without entity", e.Kind)
	}
	return e, nil
}

func vec(r gjson.Result) (mgl64.Vec3, error) {
	arr := r.Array()
	if len(arr) != 3 {
		return mgl64.Vec3{}, oerror.New("expected 3 coordinates, got %q", r.Raw)
	}
	return mgl64.Vec3{arr[0].Float(), arr[1].Float(), arr[2].Float()}, nil
}

func blockPos(r gjson.Result) (cube.Pos, error) {
	arr := r.Array()
	if len(arr) != 3 {
		return cube.Pos{}, oerror.New("expected 3 block coordinates, got %q", r.Raw)
	}
	return cube.Pos{int(arr[0].Int()), int(arr[1].Int()), int(arr[2].Int())}, nil
}
