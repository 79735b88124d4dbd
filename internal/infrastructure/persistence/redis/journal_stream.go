package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alem-hub/reportcard/internal/domain/journal"
)

// DefaultStream is the stream key used when none is configured.
const DefaultStream = "reportcard:journal"

// JournalStream appends drained journal records to a Redis stream with XADD
// and announces each batch on a pub/sub channel named "<stream>:drained".
type JournalStream struct {
	client *Client
	stream string
	maxLen int64
}

// NewJournalStream creates a sink writing to stream. maxLen caps the stream
// approximately; zero leaves it unbounded.
func NewJournalStream(client *Client, stream string, maxLen int64) *JournalStream {
	if stream == "" {
		stream = DefaultStream
	}
	return &JournalStream{client: client, stream: stream, maxLen: maxLen}
}

// Name identifies the sink.
func (s *JournalStream) Name() string {
	return "redis"
}

// Stream returns the stream key.
func (s *JournalStream) Stream() string {
	return s.stream
}

// Archive appends every record in one pipeline.
func (s *JournalStream) Archive(ctx context.Context, records []journal.Record) error {
	if len(records) == 0 {
		return nil
	}

	_, err := s.client.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range records {
			pipe.XAdd(ctx, s.xaddArgs(r))
		}
		pipe.Publish(ctx, s.stream+":drained", len(records))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: failed to append %d records to %s: %w", len(records), s.stream, err)
	}
	return nil
}

func (s *JournalStream) xaddArgs(r journal.Record) *redis.XAddArgs {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: recordValues(r),
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return args
}

func recordValues(r journal.Record) map[string]any {
	return map[string]any{
		"id":             r.ID,
		"operation_type": string(r.OperationType),
		"student_id":     r.StudentID,
		"student_name":   r.StudentName,
		"recorded_at":    r.RecordedAt.UTC().Format(time.RFC3339Nano),
		"recorded_unix":  strconv.FormatInt(r.RecordedAt.UnixMilli(), 10),
	}
}
