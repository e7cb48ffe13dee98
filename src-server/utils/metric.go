package utils

import "time"

// Latencies in microseconds, read by the metric package.
type Metric struct {
	DatabaseRead       chan float64
	DatabaseWrite      chan float64
	DiscordSendMessage chan float64
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:       make(chan float64),
		DatabaseWrite:      make(chan float64),
		DiscordSendMessage: make(chan float64),
	}
}

// Observe sends the time since start to ch, dropping it when nobody is
// collecting.
func Observe(ch chan float64, start time.Time) {
	select {
	case ch <- float64(time.Since(start).Microseconds()):
	default:
	}
}
