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
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchline/pitchline/config"
	"github.com/pitchline/pitchline/model"
)

func webhookConfig(url string, redisAddr string) *config.Configuration {
	conf := &config.Configuration{
		Redis: config.RedisConfig{Dns: redisAddr},
	}
	conf.Notification.Webhook.Url = url
	config.MockConfig(conf)
	return conf
}

func TestSendWebhook(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	webhookConfig("https://localhost:5001/webhook", mr.Addr())

	testData := NewWebhook{
		Event:   "pitch.approved",
		Payload: &model.PitchGeneration{PitchGenID: "pg_1"},
	}

	err = SendWebhook(testData)
	assert.NoError(t, err)

	// Verify that the task was enqueued
	tasks := mr.Keys()
	t.Log(tasks)
	assert.NotEmpty(t, tasks)
}

func TestSendWebhookNoURLConfigured(t *testing.T) {
	webhookConfig("", "localhost:6379")

	err := SendWebhook(NewWebhook{Event: "pitch.sent"})
	assert.NoError(t, err)
}

func TestProcessHTTPRetriesTransientFailures(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	webhookConfig("https://hooks.example.com/pitchline", "localhost:6379")

	calls := 0
	httpmock.RegisterResponder("POST", "https://hooks.example.com/pitchline",
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return httpmock.NewStringResponse(http.StatusBadGateway, "bad gateway"), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"ok":true}`), nil
		})

	err := processHTTP(NewWebhook{Event: "pitch.replied"})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestProcessHTTPDoesNotRetryRejections(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	webhookConfig("https://hooks.example.com/pitchline", "localhost:6379")

	httpmock.RegisterResponder("POST", "https://hooks.example.com/pitchline",
		httpmock.NewStringResponder(http.StatusUnauthorized, "nope"))

	err := processHTTP(NewWebhook{Event: "pitch.replied"})
	assert.Error(t, err)
	// A 4XX will not get better on retry.
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}
