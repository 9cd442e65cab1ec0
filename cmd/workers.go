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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/pitchline/pitchline"
	"github.com/pitchline/pitchline/config"
	redis_db "github.com/pitchline/pitchline/internal/redis-db"
	"github.com/pitchline/pitchline/model"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
)

// processSendTask dispatches a pitch whose send time has arrived. Marking the
// pitch sent is a forward-only transition, so a redelivered task after a
// worker crash is a no-op.
func (b *pitchlineInstance) processSendTask(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("pitchline.send.worker").Start(ctx, "Dispatch Pitch From Redis Queue")
	defer span.End()

	var pitch model.PitchGeneration
	if err := json.Unmarshal(t.Payload(), &pitch); err != nil {
		logrus.Error(err)
		return err
	}

	sent, err := b.pitchline.RecordDeliveryEvent(ctx, pitch.PitchGenID, "sent")
	if err != nil {
		logrus.Infof("Pitch %s pushed back for retry due to error: %v", pitch.PitchGenID, err)
		return err
	}

	if err := pitchline.SendWebhook(pitchline.NewWebhook{
		Event:   "pitch.sent",
		Payload: sent,
	}); err != nil {
		logrus.Error(err)
	}

	log.Println(" [*] Pitch Dispatched", pitch.PitchGenID)
	return nil
}

// processFollowUpDispatch handles a follow-up task whose send time has
// arrived. Queue-level cancellation on reply is best effort, so the worker
// re-checks the thread before dispatching: a parent that has already drawn a
// reply, bounced or closed out suppresses the follow-up.
func (b *pitchlineInstance) processFollowUpDispatch(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("pitchline.followup.worker").Start(ctx, "Dispatch Follow-Up From Redis Queue")
	defer span.End()

	var followUp pitchline.FollowUpPayload
	if err := json.Unmarshal(t.Payload(), &followUp); err != nil {
		logrus.Error(err)
		return err
	}

	parent, err := b.pitchline.GetPitchGeneration(ctx, followUp.ParentID)
	if err != nil {
		return err
	}

	if !model.CanAdvancePitchState(parent.PitchState, model.PitchStateReplied) {
		log.Printf(" [*] Follow-up %s suppressed, thread %s is no longer awaiting a reply (%s)",
			followUp.PitchGenID, followUp.ParentID, parent.PitchState)
		return nil
	}

	sent, err := b.pitchline.RecordDeliveryEvent(ctx, followUp.PitchGenID, "sent")
	if err != nil {
		logrus.Infof("Follow-up %s pushed back for retry due to error: %v", followUp.PitchGenID, err)
		return err
	}

	if err := pitchline.SendWebhook(pitchline.NewWebhook{
		Event:   "pitch.follow_up.sent",
		Payload: sent,
	}); err != nil {
		logrus.Error(err)
	}

	log.Println(" [*] Follow-Up Dispatched", followUp.PitchGenID)
	return nil
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Queue.WebhookQueue] = 3
	queues[cfg.Queue.FollowUpQueue] = 3

	for i := 1; i <= cfg.Queue.NumberOfQueues; i++ {
		queueName := fmt.Sprintf("%s_%d", cfg.Queue.SendQueue, i)
		queues[queueName] = 1
	}
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(b *pitchlineInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	// Register handlers for the sharded send queues
	for i := 1; i <= cfg.Queue.NumberOfQueues; i++ {
		queueName := fmt.Sprintf("%s_%d", cfg.Queue.SendQueue, i)
		mux.HandleFunc(queueName, b.processSendTask)
	}

	// Register handlers for other task types
	mux.HandleFunc(cfg.Queue.FollowUpQueue, b.processFollowUpDispatch)
	mux.HandleFunc(cfg.Queue.WebhookQueue, pitchline.ProcessWebhook)
}

// workerCommands defines the "workers" command to start worker processes.
// The workers listen to the sharded send queues, the follow-up queue and the
// webhook delivery queue.
func workerCommands(b *pitchlineInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start pitchline workers",
		Run: func(cmd *cobra.Command, args []string) {
			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			queues := initializeQueues()

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(b, mux)

			// Start asynqmon server for health checks and monitoring
			redisOption, _ := redis_db.ParseRedisURL(conf.Redis.Dns, conf.Redis.SkipTLSVerify)
			h := asynqmon.New(asynqmon.Options{
				RootPath: "/monitoring",
				RedisConnOpt: asynq.RedisClientOpt{
					Addr:      redisOption.Addr,
					Password:  redisOption.Password,
					DB:        redisOption.DB,
					TLSConfig: redisOption.TLSConfig,
				},
			})

			go func() {
				monitoringAddr := fmt.Sprintf(":%s", conf.Queue.MonitoringPort)
				log.Printf("Asynqmon server listening on %s/monitoring", monitoringAddr)
				if err := http.ListenAndServe(monitoringAddr, h); err != nil {
					log.Fatalf("could not start asynqmon server: %v", err)
				}
			}()

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
