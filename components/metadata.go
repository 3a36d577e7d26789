package components

import (
	"github.com/ikkentim/AIWorld-sub000/steering"
	"gonum.org/v1/gonum/spatial/r3"
)

// FieldDescriptor describes an agent field for inspection output.
type FieldDescriptor struct {
	ID     string // Unique identifier
	Label  string // Display name
	Format string // Printf format (e.g., "%.2f")
	Group  string // Logical grouping
}

// AgentFieldDescriptors returns metadata for the inspectable agent fields.
// Field IDs must match cases in AgentValue().
func AgentFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "speed", Label: "Speed", Format: "%.2f", Group: "motion"},
		{ID: "max_speed", Label: "Max Speed", Format: "%.2f", Group: "motion"},
		{ID: "force", Label: "Force", Format: "%.2f", Group: "motion"},
		{ID: "behaviors", Label: "Behaviors", Format: "%.0f", Group: "steering"},
		{ID: "waypoints", Label: "Waypoints", Format: "%.0f", Group: "route"},
		{ID: "replans", Label: "Replans", Format: "%.0f", Group: "route"},
		{ID: "distance", Label: "Distance", Format: "%.1f", Group: "odometer"},
		{ID: "top_speed", Label: "Top Speed", Format: "%.2f", Group: "odometer"},
		{ID: "arrivals", Label: "Arrivals", Format: "%.0f", Group: "odometer"},
	}
}

// AgentGroups returns the logical groupings for agent fields.
func AgentGroups() []string {
	return []string{"motion", "steering", "route", "odometer"}
}

// AgentValue extracts an agent field value by ID.
func AgentValue(v *steering.Vehicle, dest *Destination, odo *Odometer, fieldID string) float64 {
	switch fieldID {
	case "speed":
		return v.Speed()
	case "max_speed":
		return v.MaxSpeed
	case "force":
		return r3.Norm(v.Force)
	case "behaviors":
		return float64(len(v.Behaviors()))
	case "waypoints":
		return float64(v.PathLen())
	case "replans":
		if dest == nil {
			return 0
		}
		return float64(dest.Replans)
	case "distance":
		if odo == nil {
			return 0
		}
		return odo.Distance
	case "top_speed":
		if odo == nil {
			return 0
		}
		return odo.TopSpeed
	case "arrivals":
		if odo == nil {
			return 0
		}
		return float64(odo.Arrivals)
	default:
		return 0
	}
}
