package iot

import (
	"math"
	"math/rand/v2"
	"time"
)

func between(lo, hi int) int { return lo + rand.IntN(hi-lo) }

func reading(base, spread float64) float64 {
	return math.Round((base+rand.Float64()*spread)*10) / 10
}

func newQueueReading(facilityID string, now time.Time) *QueueReading {
	return &QueueReading{
		FacilityID: facilityID,
		Queues: map[string]int{
			QueueOutpatient:   between(10, 40),
			QueueEmergency:    between(2, 12),
			QueueRegistration: between(5, 25),
		},
		Sensors: []Sensor{
			{
				Location:    "Ruang Tunggu Poliklinik",
				Occupancy:   between(30, 80),
				Temperature: reading(24, 3),
				Humidity:    reading(55, 20),
				Status:      "online",
			},
			{
				Location:    "IGD - Triage Area",
				Occupancy:   between(20, 60),
				Temperature: reading(23, 3),
				Humidity:    reading(55, 20),
				Status:      "online",
			},
		},
		LastUpdate: now,
	}
}

func newDeviceCatalog() []Device {
	return []Device{
		{
			ID:              "DEV-001",
			Name:            "Ventilator ICU-A1",
			Status:          "active",
			Usage:           between(60, 90),
			Temperature:     reading(23, 2),
			LastMaintenance: "2024-10-15",
		},
		{
			ID:              "DEV-002",
			Name:            "MRI Scanner",
			Status:          "active",
			Usage:           between(40, 80),
			Temperature:     reading(23, 2),
			LastMaintenance: "2024-10-20",
		},
	}
}
