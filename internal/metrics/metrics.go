package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "photoguessr"

// RoomCounter reports live rooms and the players in them. game.Store
// implements it.
type RoomCounter interface {
	Counts() (rooms, players int)
}

// Metrics implements game.Recorder on top of Prometheus collectors.
type Metrics struct {
	guesses        *prometheus.CounterVec
	guessDistance  prometheus.Histogram
	roundsAdvanced prometheus.Counter
	gamesFinished  prometheus.Counter
	roomsSwept     prometheus.Counter
	photoErrors    prometheus.Counter
}

func New(reg prometheus.Registerer, rooms RoomCounter) *Metrics {
	m := &Metrics{
		guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_total",
			Help:      "Guesses recorded, by kind (manual or timeout).",
		}, []string{"kind"}),
		guessDistance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "guess_distance_meters",
			Help:      "Distance between manual guesses and the true photo location.",
			Buckets:   []float64{5, 15, 30, 60, 100, 200, 500, 1000, 10000},
		}),
		roundsAdvanced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_advanced_total",
			Help:      "Rounds started after round one.",
		}),
		gamesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games that reached their final round.",
		}),
		roomsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_swept_total",
			Help:      "Rooms removed by the inactivity sweep.",
		}),
		photoErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_fetch_errors_total",
			Help:      "Failed photo store lookups.",
		}),
	}

	collectors := []prometheus.Collector{
		m.guesses, m.guessDistance, m.roundsAdvanced, m.gamesFinished, m.roomsSwept, m.photoErrors,
	}
	if rooms != nil {
		collectors = append(collectors,
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rooms",
				Help:      "Live rooms.",
			}, func() float64 {
				n, _ := rooms.Counts()
				return float64(n)
			}),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "players",
				Help:      "Players in live rooms.",
			}, func() float64 {
				_, n := rooms.Counts()
				return float64(n)
			}),
		)
	}
	reg.MustRegister(collectors...)
	return m
}

func (m *Metrics) GuessRecorded(timedOut bool, distance float64) {
	if m == nil {
		return
	}
	if timedOut {
		m.guesses.WithLabelValues("timeout").Inc()
		return
	}
	m.guesses.WithLabelValues("manual").Inc()
	if !math.IsInf(distance, 0) && !math.IsNaN(distance) {
		m.guessDistance.Observe(distance)
	}
}

func (m *Metrics) RoundAdvanced() {
	if m == nil {
		return
	}
	m.roundsAdvanced.Inc()
}

func (m *Metrics) GameFinished() {
	if m == nil {
		return
	}
	m.gamesFinished.Inc()
}

func (m *Metrics) RoomsSwept(n int) {
	if m == nil {
		return
	}
	m.roomsSwept.Add(float64(n))
}

func (m *Metrics) PhotoFetchFailed() {
	if m == nil {
		return
	}
	m.photoErrors.Inc()
}
