/*
Copyright 2025 Pitchline Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pitchline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/pitchline/pitchline/config"
	redis_db "github.com/pitchline/pitchline/internal/redis-db"
	"github.com/pitchline/pitchline/model"
)

// Queue represents a queue for handling various tasks.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// FollowUpPayload is the task payload for a scheduled follow-up dispatch.
type FollowUpPayload struct {
	PitchGenID string    `json:"pitch_gen_id"`
	ParentID   string    `json:"parent_id"`
	SendAt     time.Time `json:"send_at"`
}

// NewQueue initializes a new Queue instance with the provided configuration.
//
// Parameters:
// - conf *config.Configuration: The configuration for the queue.
//
// Returns:
// - *Queue: A pointer to the newly created Queue instance.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// Enqueue enqueues a pitch for delivery. Pitches with a scheduled send time
// are held by the broker until the time arrives; everything else dispatches
// immediately. A task the broker already holds under this pitch's id is
// replaced, so rescheduling and manual sends of a scheduled pitch both work.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - pitch *model.PitchGeneration: The pitch to be enqueued.
//
// Returns:
// - error: An error if the pitch could not be enqueued.
func (q *Queue) Enqueue(ctx context.Context, pitch *model.PitchGeneration) error {
	ctx, span := tracer.Start(ctx, "Adding Pitch To Redis Queue")
	defer span.End()

	payload, err := json.Marshal(pitch)
	if err != nil {
		return err
	}
	task, err := q.geTask(pitch, payload)
	if err != nil {
		return err
	}
	if err := q.CancelQueuedSend(pitch.PitchGenID, pitch.CampaignID); err != nil {
		return err
	}
	info, err := q.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5))
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued pitch: %+v", pitch.PitchGenID)

	return nil
}

// QueueFollowUp enqueues a follow-up dispatch task held until its send time.
// The task id is derived from the follow-up's pitch id so a reply arriving
// before the send time can cancel it.
//
// Parameters:
// - followUp FollowUpPayload: The follow-up to schedule.
//
// Returns:
// - error: An error if the task could not be enqueued.
func (q *Queue) QueueFollowUp(followUp FollowUpPayload) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(followUp)
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.TaskID(followUp.PitchGenID),
		asynq.Queue(cfg.Queue.FollowUpQueue),
		asynq.ProcessIn(time.Until(followUp.SendAt)),
	}
	task := asynq.NewTask(cfg.Queue.FollowUpQueue, payload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued follow-up: %+v", followUp.PitchGenID)
	return nil
}

// CancelFollowUp removes a scheduled follow-up task from the queue, if it is
// still waiting. A task already dispatched or never queued is not an error.
//
// Parameters:
// - pitchGenID string: The id of the follow-up pitch whose task to remove.
//
// Returns:
// - error: An error if the queue could not be inspected.
func (q *Queue) CancelFollowUp(pitchGenID string) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	err = q.Inspector.DeleteTask(cfg.Queue.FollowUpQueue, pitchGenID)
	if err != nil && !errors.Is(err, asynq.ErrTaskNotFound) && !errors.Is(err, asynq.ErrQueueNotFound) {
		return err
	}
	return nil
}

// CancelQueuedSend removes a pitch's queued send task, if the broker still
// holds one. A task already dispatched or never queued is not an error.
//
// Parameters:
// - pitchGenID string: The id of the pitch whose task to remove.
// - campaignID string: The campaign the pitch belongs to, for queue routing.
//
// Returns:
// - error: An error if the queue could not be inspected.
func (q *Queue) CancelQueuedSend(pitchGenID, campaignID string) error {
	queueName, err := q.sendQueueName(campaignID)
	if err != nil {
		return err
	}

	err = q.Inspector.DeleteTask(queueName, pitchGenID)
	if err != nil && !errors.Is(err, asynq.ErrTaskNotFound) && !errors.Is(err, asynq.ErrQueueNotFound) {
		return err
	}
	return nil
}

// geTask generates a task for a pitch and assigns it to a specific queue based on the campaign ID.
// It ensures that pitches are evenly distributed across multiple queues by hashing the campaign ID.
// This approach keeps all pitches of the same campaign in one queue so they dispatch serially,
// which avoids racing state transitions within a single campaign.
//
// Parameters:
// - pitch *model.PitchGeneration: The pitch for which to generate the task.
// - payload []byte: The payload for the task, typically the serialized pitch data.
//
// Returns:
// - *asynq.Task: The generated task ready to be enqueued.
// - error: An error if the queue configuration could not be fetched.
func (q *Queue) geTask(pitch *model.PitchGeneration, payload []byte) (*asynq.Task, error) {
	queueName, err := q.sendQueueName(pitch.CampaignID)
	if err != nil {
		return nil, err
	}

	taskOptions := []asynq.Option{asynq.TaskID(pitch.PitchGenID), asynq.Queue(queueName)}
	if !pitch.ScheduledSendAt.IsZero() {
		taskOptions = append(taskOptions, asynq.ProcessIn(time.Until(pitch.ScheduledSendAt)))
	}

	return asynq.NewTask(queueName, payload, taskOptions...), nil
}

// sendQueueName resolves the sharded send queue a campaign's pitches route to.
func (q *Queue) sendQueueName(campaignID string) (string, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return "", err
	}
	queueIndex := hashCampaignID(campaignID) % cnf.Queue.NumberOfQueues
	return fmt.Sprintf("%s_%d", cnf.Queue.SendQueue, queueIndex+1), nil
}

// hashCampaignID returns a consistent hash value for a string campaign ID.
//
// Parameters:
// - campaignID string: The campaign ID to hash.
//
// Returns:
// - int: The hash value of the campaign ID.
func hashCampaignID(campaignID string) int {
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(campaignID))
	return int(hasher.Sum32())
}

// GetPitchFromQueue retrieves a queued pitch by its ID.
//
// Parameters:
// - pitchGenID string: The ID of the pitch to retrieve.
//
// Returns:
// - *model.PitchGeneration: A pointer to the PitchGeneration model if found.
// - error: An error if the pitch could not be retrieved.
func (q *Queue) GetPitchFromQueue(pitchGenID string) (*model.PitchGeneration, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	// Iterate over all specific send queues
	for i := 1; i <= cfg.Queue.NumberOfQueues; i++ {
		queueName := fmt.Sprintf("%s_%d", cfg.Queue.SendQueue, i)
		task, err := q.Inspector.GetTaskInfo(queueName, pitchGenID)
		if err == nil && task != nil {
			var pitch model.PitchGeneration
			if err := json.Unmarshal(task.Payload, &pitch); err != nil {
				return nil, err
			}
			return &pitch, nil
		}
	}
	return nil, nil // Return nil if pitch is not found in any queue
}
