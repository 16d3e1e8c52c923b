package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/domains/importer/model"
)

// RedisNotifier pushes job progress over Redis pub/sub. Delivery is
// at-least-once in ledger write order; publish failures are logged and never
// surface to the runner.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func channelFor(jobID uuid.UUID) string {
	return fmt.Sprintf("imports:progress:%s", jobID)
}

// Publish sends a progress event to the job's channel.
func (n *RedisNotifier) Publish(ctx context.Context, event model.ProgressEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal progress event")
		return
	}

	if err := n.client.Publish(ctx, channelFor(event.JobID), payload).Err(); err != nil {
		log.Warn().
			Err(err).
			Str("job_id", event.JobID.String()).
			Msg("Failed to publish progress event")
	}
}

// Subscribe returns a channel of progress events for one job. The channel is
// closed when ctx is done or stop is called. A slow subscriber only loses its
// own events; publishers are never blocked.
func (n *RedisNotifier) Subscribe(ctx context.Context, jobID uuid.UUID) (<-chan model.ProgressEvent, func()) {
	pubsub := n.client.Subscribe(ctx, channelFor(jobID))
	events := make(chan model.ProgressEvent, 16)

	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event model.ProgressEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Msg("Dropping malformed progress event")
				continue
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() {
		if err := pubsub.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close progress subscription")
		}
	}

	return events, stop
}
