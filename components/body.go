package components

import "github.com/ikkentim/AIWorld-sub000/steering"

// Obstacle is a static sphere that vehicles steer around.
type Obstacle struct {
	Body *steering.Obstacle
}

// Odometer accumulates motion of an agent.
type Odometer struct {
	Distance  float64 // World units travelled
	TopSpeed  float64
	Arrivals  int   // Routes completed
	SpawnTick int32 // Tick the agent entered the world
}

// Record adds one tick of motion.
func (o *Odometer) Record(step, speed float64) {
	o.Distance += step
	if speed > o.TopSpeed {
		o.TopSpeed = speed
	}
}
