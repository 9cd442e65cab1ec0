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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndAddDefaults(t *testing.T) {
	cnf := &Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost:5432/pitchline"},
		Redis:      RedisConfig{Dns: "localhost:6379"},
	}

	err := cnf.validateAndAddDefaults()
	require.NoError(t, err)

	assert.Equal(t, "Pitchline Server", cnf.ProjectName)
	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
	assert.Equal(t, "new:send", cnf.Queue.SendQueue)
	assert.Equal(t, "new:follow_up", cnf.Queue.FollowUpQueue)
	assert.Equal(t, "new:webhook", cnf.Queue.WebhookQueue)
	assert.Equal(t, 4, cnf.Queue.NumberOfQueues)
	assert.Equal(t, 5, cnf.Queue.MaxRetryAttempts)
	assert.Equal(t, 2000, cnf.Scheduler.AutosaveDebounceMs)
}

func TestValidateRequiresDataSource(t *testing.T) {
	cnf := &Configuration{
		Redis: RedisConfig{Dns: "localhost:6379"},
	}
	assert.Error(t, cnf.validateAndAddDefaults())
}

func TestValidateRequiresRedis(t *testing.T) {
	cnf := &Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost:5432/pitchline"},
	}
	assert.Error(t, cnf.validateAndAddDefaults())
}

func TestRateLimitDefaults(t *testing.T) {
	rps := 10.0
	cnf := &Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost:5432/pitchline"},
		Redis:      RedisConfig{Dns: "localhost:6379"},
		RateLimit:  RateLimitConfig{RequestsPerSecond: &rps},
	}

	require.NoError(t, cnf.validateAndAddDefaults())
	require.NotNil(t, cnf.RateLimit.Burst)
	assert.Equal(t, 20, *cnf.RateLimit.Burst)
	require.NotNil(t, cnf.RateLimit.CleanupIntervalSec)
	assert.Equal(t, 10800, *cnf.RateLimit.CleanupIntervalSec)
}

func TestMockConfigFetch(t *testing.T) {
	MockConfig(&Configuration{ProjectName: "Test"})

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "Test", cnf.ProjectName)
	assert.Equal(t, "new:send", cnf.Queue.SendQueue)
}
