package steering

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/geom"
)

// resolve looks up a vehicle by id through the environment. The vehicle
// itself never counts as a target.
func resolve(v *Vehicle, id int) (*Vehicle, bool) {
	if v.env == nil {
		return nil, false
	}
	other, ok := v.env.Find(id)
	if !ok || other == nil || other == v {
		return nil, false
	}
	return other, true
}

// lookAhead estimates how long it takes v to reach other.
func lookAhead(v, other *Vehicle, dist float64) float64 {
	closing := v.MaxSpeed + other.Speed()
	if closing <= 0 {
		return 0
	}
	return dist / closing
}

// headOn reports whether other is ahead of v and facing it.
func headOn(v, other *Vehicle, to r3.Vec) bool {
	return r3.Dot(to, v.Heading) > 0 && r3.Dot(v.Heading, other.Heading) < v.Params.HeadOnThreshold
}

// Pursuit intercepts another vehicle at its predicted position.
type Pursuit struct {
	v        *Vehicle
	TargetID int
}

// NewPursuit creates a Pursuit behavior chasing the vehicle with the given id.
func NewPursuit(v *Vehicle, targetID int) *Pursuit {
	return &Pursuit{v: v, TargetID: targetID}
}

func (b *Pursuit) Calculate(float64) r3.Vec {
	target, ok := resolve(b.v, b.TargetID)
	if !ok {
		return r3.Vec{}
	}
	to := r3.Sub(target.Pos, b.v.Pos)
	if headOn(b.v, target, to) {
		return SeekForce(b.v, target.Pos)
	}
	t := lookAhead(b.v, target, r3.Norm(to))
	return SeekForce(b.v, r3.Add(target.Pos, r3.Scale(t, target.Velocity)))
}

// Evade flees from the predicted position of another vehicle.
type Evade struct {
	v          *Vehicle
	PursuerID  int
	PanicRange float64 // Zero evades at any distance
}

// NewEvade creates an Evade behavior.
func NewEvade(v *Vehicle, pursuerID int, panicRange float64) *Evade {
	return &Evade{v: v, PursuerID: pursuerID, PanicRange: panicRange}
}

func (b *Evade) Calculate(float64) r3.Vec {
	pursuer, ok := resolve(b.v, b.PursuerID)
	if !ok {
		return r3.Vec{}
	}
	to := r3.Sub(pursuer.Pos, b.v.Pos)
	dist := r3.Norm(to)
	if b.PanicRange > 0 && dist > b.PanicRange {
		return r3.Vec{}
	}
	if headOn(b.v, pursuer, to) {
		return FleeForce(b.v, pursuer.Pos)
	}
	t := lookAhead(b.v, pursuer, dist)
	return FleeForce(b.v, r3.Add(pursuer.Pos, r3.Scale(t, pursuer.Velocity)))
}

// OffsetPursuit keeps a fixed offset in the local frame of a leader.
type OffsetPursuit struct {
	v        *Vehicle
	LeaderID int
	Offset   r3.Vec
}

// NewOffsetPursuit creates an OffsetPursuit behavior.
func NewOffsetPursuit(v *Vehicle, leaderID int, offset r3.Vec) *OffsetPursuit {
	return &OffsetPursuit{v: v, LeaderID: leaderID, Offset: offset}
}

func (b *OffsetPursuit) Calculate(float64) r3.Vec {
	leader, ok := resolve(b.v, b.LeaderID)
	if !ok {
		return r3.Vec{}
	}
	slot := leader.Frame().PointToWorld(b.Offset, leader.Pos)
	t := lookAhead(b.v, leader, geom.Distance(slot, b.v.Pos))
	return ArriveForce(b.v, r3.Add(slot, r3.Scale(t, leader.Velocity)), DecelerationFast)
}
