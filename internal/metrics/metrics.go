package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// RefreshesTotal counts refresh cycles by result
	RefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stream_bridge_refreshes_total",
		Help: "Total number of refresh cycles",
	}, []string{"result"})

	// RefreshDuration tracks how long refresh cycles take
	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stream_bridge_refresh_duration_seconds",
		Help:    "Duration of refresh cycles",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	// DetailFetches tracks per-stream detail lookups by outcome
	DetailFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stream_bridge_detail_fetches_total",
		Help: "Total number of per-stream detail lookups",
	}, []string{"outcome"})

	// SnapshotStreams tracks the number of streams in the published snapshot
	SnapshotStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stream_bridge_snapshot_streams",
		Help: "Number of streams in the published snapshot",
	})

	// SnapshotPlaybackURLs tracks the number of cached playback URLs
	SnapshotPlaybackURLs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stream_bridge_snapshot_playback_urls",
		Help: "Number of playback URLs in the published snapshot",
	})

	// SnapshotTimestamp is the fetch time of the published snapshot
	SnapshotTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stream_bridge_snapshot_timestamp_seconds",
		Help: "Unix time the published catalog was fetched",
	})

	// PlaylistEntries tracks the entry count of the last generated playlist
	PlaylistEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stream_bridge_playlist_entries",
		Help: "Number of entries in the last generated playlist",
	})

	// GuideProgrammes tracks the programme count of the last generated guide
	GuideProgrammes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stream_bridge_guide_programmes",
		Help: "Number of programmes in the last generated guide",
	})
)

// RecordRefresh records the result and duration of a refresh cycle
func RecordRefresh(success bool, d time.Duration) {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}
	RefreshesTotal.WithLabelValues(result).Inc()
	RefreshDuration.Observe(d.Seconds())
}

// RecordDetailFetch increments the detail lookup counter for an outcome
func RecordDetailFetch(outcome string) {
	DetailFetches.WithLabelValues(outcome).Inc()
}

// SetSnapshot updates the gauges describing the published snapshot
func SetSnapshot(streams, playbackURLs int, fetchedAt time.Time) {
	SnapshotStreams.Set(float64(streams))
	SnapshotPlaybackURLs.Set(float64(playbackURLs))
	if !fetchedAt.IsZero() {
		SnapshotTimestamp.Set(float64(fetchedAt.Unix()))
	}
}

// SetPlaylistEntries sets the entry count of the last generated playlist
func SetPlaylistEntries(count int) {
	PlaylistEntries.Set(float64(count))
}

// SetGuideProgrammes sets the programme count of the last generated guide
func SetGuideProgrammes(count int) {
	GuideProgrammes.Set(float64(count))
}
