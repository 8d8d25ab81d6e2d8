package iot

import "time"

// Standard queue names reported by facility sensors.
const (
	QueueOutpatient   = "outpatient"
	QueueEmergency    = "emergency"
	QueueRegistration = "registration"
)

// Sensor is an environmental reading from one area of a facility.
type Sensor struct {
	Location    string  `json:"location"`
	Occupancy   int     `json:"occupancy"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Status      string  `json:"status"`
}

// QueueReading is the live queue state of a facility. Queues is keyed by
// queue name and may hold names beyond the standard three.
type QueueReading struct {
	FacilityID string         `json:"facilityId"`
	Queues     map[string]int `json:"queues"`
	Sensors    []Sensor       `json:"sensors"`
	LastUpdate time.Time      `json:"lastUpdate"`
}

// Device is a monitored piece of medical equipment.
type Device struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	Usage           int     `json:"usage"`
	Temperature     float64 `json:"temperature"`
	LastMaintenance string  `json:"lastMaintenance"`
}
