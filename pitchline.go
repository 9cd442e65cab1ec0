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
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pitchline/pitchline/config"
	"github.com/pitchline/pitchline/database"
	redis_db "github.com/pitchline/pitchline/internal/redis-db"
)

// Pitchline represents the main struct for the Pitchline application.
type Pitchline struct {
	queue      *Queue
	redis      redis.UniversalClient
	datasource database.IDataSource
	autosave   *AutosaveSynchronizer
}

// NewPitchline initializes a new instance of Pitchline with the provided database datasource.
// It fetches the configuration and initializes the Redis client, the task queue and the
// draft autosave synchronizer.
//
// Parameters:
// - db database.IDataSource: The datasource for database operations.
//
// Returns:
// - *Pitchline: A pointer to the newly created Pitchline instance.
// - error: An error if any of the initialization steps fail.
func NewPitchline(db database.IDataSource) (*Pitchline, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)}, configuration.Redis.SkipTLSVerify)
	if err != nil {
		return nil, err
	}
	newQueue := NewQueue(configuration)

	newPitchline := &Pitchline{datasource: db, queue: newQueue, redis: redisClient.Client()}
	newPitchline.autosave = NewAutosaveSynchronizer(db, configuration)
	return newPitchline, nil
}

// Autosave exposes the draft autosave synchronizer.
func (p *Pitchline) Autosave() *AutosaveSynchronizer {
	return p.autosave
}
