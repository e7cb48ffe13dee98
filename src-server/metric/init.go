package metric

import (
	"log/slog"
	"time"

	"stellarbot/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
)

func register(gauge prometheus.Gauge, name string) bool {
	if err := prometheus.Register(gauge); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register "+name+" metric", "error", err)
			return false
		}
	}
	slog.Debug(name + " metric registered")
	gauge.Set(0)
	return true
}

func unregister(gauge prometheus.Gauge, name string) {
	switch prometheus.Unregister(gauge) {
	case true:
		slog.Debug(name + " metric unregistered")
	case false:
		slog.Warn(name + " metric not registered")
	}
}

// channelGauge shows the latest value received on ch, going back to 0 when
// nothing arrives for clearInterval.
func channelGauge(as *utils.AppState, name, help string, ch <-chan float64, clearInterval time.Duration) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	if !register(gauge, name) {
		return
	}
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		clearTicker := time.NewTicker(clearInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(gauge, name)
				return
			case latency := <-ch:
				gauge.Set(latency)
				clearTicker.Reset(clearInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

// polledGauge sets the gauge to poll() every interval.
func polledGauge(as *utils.AppState, name, help string, interval time.Duration, poll func() (float64, error)) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	if !register(gauge, name) {
		return
	}
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(gauge, name)
				return
			case <-ticker.C:
				value, err := poll()
				if err != nil {
					slog.Error("can't collect "+name, "error", err)
					continue
				}
				gauge.Set(value)
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := as.Config.GetMetricCollectionInterval() * 2

	polledGauge(as,
		"stellarbot_database_empty_read_microsec",
		"The latency of an empty database read in microseconds",
		tickerInterval,
		func() (float64, error) {
			latency, err := database(as)
			return float64(latency.Microseconds()), err
		},
	)
	channelGauge(as,
		"stellarbot_database_read_microsec",
		"The latency of a database read in microseconds",
		as.MetricChans.DatabaseRead, clearTickerInterval,
	)
	channelGauge(as,
		"stellarbot_database_write_microsec",
		"The latency of a database write in microseconds",
		as.MetricChans.DatabaseWrite, clearTickerInterval,
	)
	channelGauge(as,
		"stellarbot_discord_send_message_microsec",
		"The latency of a discord message send in microseconds",
		as.MetricChans.DiscordSendMessage, clearTickerInterval,
	)
	if as.DgSession != nil {
		polledGauge(as,
			"stellarbot_discord_heartbeat_latency_microsec",
			"The latency of a discord heartbeat in microseconds",
			tickerInterval,
			func() (float64, error) {
				return float64(as.DgSession.HeartbeatLatency().Microseconds()), nil
			},
		)
	}
}
