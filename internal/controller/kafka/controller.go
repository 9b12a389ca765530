package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	kafkapc "github.com/communitycms/media-service/internal/infrastructure/kafka"
	"github.com/communitycms/media-service/internal/usecase"
	"github.com/communitycms/media-service/pkg/logger"
	"github.com/communitycms/media-service/pkg/types/errs"
	"github.com/segmentio/kafka-go"
)

// KafkaController consumes asset-deletion commands from the CMS and runs
// them through the URL-keyed deletion routine.
type KafkaController struct {
	media  usecase.MediaUseCase
	ec     *kafkapc.EventConsumer
	logger logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	media usecase.MediaUseCase,
	ec *kafkapc.EventConsumer,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	workers int,
) *KafkaController {
	return &KafkaController{
		media:          media,
		ec:             ec,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,
		workers:        workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	tasks := make(chan kafka.Message, c.workers*2)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(tasks)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(tasks)

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				// 1. read the next command
				event, err := c.ec.ReadEvent(c.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						c.logger.Error(err, "KafkaController - Start - c.ec.ReadEvent")
					}
					continue
				}

				// 2. hand it to a worker
				select {
				case tasks <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

func (c *KafkaController) deleteAsset(ctx context.Context, event kafka.Message) error {
	var payload DeleteCommandPayload
	err := json.Unmarshal(event.Value, &payload)
	if err != nil {
		return fmt.Errorf("KafkaController - deleteAsset - json.Unmarshal: %w", err)
	}

	err = c.media.Delete(ctx, payload.URL)
	if err != nil {
		// an already-deleted asset is a success for this command
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("KafkaController - deleteAsset - c.media.Delete: %w", err)
	}

	return nil
}

func (c *KafkaController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	for event := range tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error(fmt.Errorf("panic %v", r), "KafkaController - worker - panic")
				}
			}()

			processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
			err := c.deleteAsset(processCtx, event)
			processCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.deleteAsset")

				return
			}

			// commit only after the deletion succeeded
			commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
			err = c.ec.CommitEvent(commitCtx, event)
			commitCancel()
			if err != nil {
				c.logger.Error(err, "KafkaController - worker - c.ec.CommitEvent")
			}
		}()
	}
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		c.ec.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
