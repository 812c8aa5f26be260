package service

import (
	"context"
	"encoding/json"
	"time"

	"cdc-educa-be/internal/dto"
	"cdc-educa-be/internal/entity"
	"cdc-educa-be/internal/pkg/logger"
	"cdc-educa-be/internal/repository/unitofwork"
	"cdc-educa-be/pkg/events"
	pktNats "cdc-educa-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IQALogConsumerService interface {
	Consume(ctx context.Context) error
}

// qaLogConsumerService drains QA completion events off the in-process
// bus, persists the audit trail and fans the event out to NATS for
// external consumers. NATS is best effort; the database write is not.
type qaLogConsumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	natsPub    *pktNats.Publisher
	logger     logger.ILogger
}

func NewQALogConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	natsPub *pktNats.Publisher,
	qaLogger logger.ILogger,
) IQALogConsumerService {
	return &qaLogConsumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		natsPub:    natsPub,
		logger:     qaLogger,
	}
}

func (cs *qaLogConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *qaLogConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.QACompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("qa-log", "Failed to unmarshal QA event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	record := &entity.QALog{
		Query:        payload.Query,
		CleanedQuery: payload.CleanedQuery,
		Blocked:      payload.Blocked,
		BlockCode:    payload.BlockCode,
		Blocks:       payload.Blocks,
		Meta:         payload.Meta,
		SourceCount:  payload.SourceCount,
		RetryCount:   payload.RetryCount,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.QALogRepository().Create(ctx, record); err != nil {
		cs.logger.Error("qa-log", "Failed to persist QA log", map[string]interface{}{"error": err.Error()})
		msg.Nack() // Nack for retriable errors
		return
	}

	cs.logger.Info("qa-log", "QA run recorded", map[string]interface{}{
		"id":           record.Id.String(),
		"blocked":      record.Blocked,
		"block_code":   record.BlockCode,
		"source_count": record.SourceCount,
	})

	// Fan out to NATS for external consumers
	if cs.natsPub != nil {
		newEvent := events.NewQACompletedEvent
		if record.Blocked {
			newEvent = events.NewQABlockedEvent
		}
		evt := newEvent(map[string]interface{}{
			"qa_log_id":    record.Id.String(),
			"blocked":      record.Blocked,
			"block_code":   record.BlockCode,
			"source_count": record.SourceCount,
			"retry_count":  record.RetryCount,
			"recorded_at":  time.Now().Format(time.RFC3339),
		})
		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := cs.natsPub.Publish(pubCtx, evt); err != nil {
			cs.logger.Warn("qa-log", "Failed to publish QA event to NATS", map[string]interface{}{"error": err.Error()})
		}
		cancel()
	}

	msg.Ack()
}
