// Package kafka publishes swath-ready announcements so downstream services
// learn that a navigation group's interchange files are on disk.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/polarorbit/sounder-data-etl/internal/config"
	"github.com/polarorbit/sounder-data-etl/internal/observability"
	"github.com/polarorbit/sounder-data-etl/internal/swath"
	kafkago "github.com/segmentio/kafka-go"
)

// Announcer produces swath-ready messages to a Kafka topic. It implements
// pipeline.Announcer.
type Announcer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAnnouncer creates a producer for the configured announcement topic.
func NewAnnouncer(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Announcer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.AnnounceBrokers...),
		Topic:        cfg.AnnounceTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Announcer{writer: w, logger: logger, metrics: metrics}
}

// AnnounceSwath publishes one group's metadata summary. Announcements are
// advisory: the caller logs errors and moves on.
func (a *Announcer) AnnounceSwath(ctx context.Context, meta *swath.Metadata) error {
	msg, err := serializeToMessage(meta)
	if err != nil {
		a.metrics.AnnouncementErrors.Inc()
		return err
	}
	if err := a.writer.WriteMessages(ctx, msg); err != nil {
		a.metrics.AnnouncementErrors.Inc()
		return err
	}
	a.metrics.AnnouncementsPublished.Inc()
	a.logger.Debug("announced swath", "nav_set", meta.NavSet, "bands", len(meta.Bands))
	return nil
}

func (a *Announcer) Close() error {
	return a.writer.Close()
}

// announcement is the wire form of a swath-ready message: the metadata
// summary plus the interchange file paths, keyed by navigation set.
type announcement struct {
	Satellite   string    `json:"sat"`
	Instrument  string    `json:"instrument"`
	NavSet      string    `json:"nav_set_uid"`
	StartTime   time.Time `json:"start_time"`
	Rows        int       `json:"swath_rows"`
	Cols        int       `json:"swath_cols"`
	LatPath     string    `json:"fbf_lat"`
	LonPath     string    `json:"fbf_lon"`
	Bands       []string  `json:"bands"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// serializeToMessage marshals a metadata summary into a Kafka message.
func serializeToMessage(meta *swath.Metadata) (kafkago.Message, error) {
	bands := make([]string, 0, len(meta.Bands))
	for key := range meta.Bands {
		text, err := key.MarshalText()
		if err != nil {
			return kafkago.Message{}, err
		}
		bands = append(bands, string(text))
	}
	sort.Strings(bands)

	data, err := json.Marshal(announcement{
		Satellite:   meta.Satellite,
		Instrument:  meta.Instrument,
		NavSet:      string(meta.NavSet),
		StartTime:   meta.StartTime,
		Rows:        meta.Rows,
		Cols:        meta.Cols,
		LatPath:     meta.LatPath,
		LonPath:     meta.LonPath,
		Bands:       bands,
		ExtractedAt: meta.ExtractedAt,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize announcement: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(meta.NavSet),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "instrument", Value: []byte(meta.Instrument)},
			{Key: "extracted_at", Value: []byte(meta.ExtractedAt.Format(time.RFC3339))},
		},
	}, nil
}
