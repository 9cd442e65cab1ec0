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
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	model2 "github.com/pitchline/pitchline/api/model"
)

// EditDraft feeds one composer edit burst into the autosave synchronizer.
// The response is immediate; the save itself fires after the debounce.
func (a Api) EditDraft(c *gin.Context) {
	threadID, passed := c.Params.Get("thread_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thread_id is required. pass it in the route /:thread_id"})
		return
	}

	var req model2.EditDraft
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateEditDraft(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	a.pitchline.Autosave().Edit(threadID, req.ToDraftContent())
	c.JSON(http.StatusAccepted, gin.H{"thread_id": threadID, "status": "dirty"})
}

// FlushDraft saves the thread's dirty content immediately, bypassing the
// debounce.
func (a Api) FlushDraft(c *gin.Context) {
	threadID, passed := c.Params.Get("thread_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thread_id is required. pass it in the route /:thread_id"})
		return
	}

	if err := a.pitchline.Autosave().Flush(c.Request.Context(), threadID); err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"thread_id": threadID, "status": "saved"})
}

// SendDraft hands the thread's draft to delivery, saving it first if it
// was never persisted.
func (a Api) SendDraft(c *gin.Context) {
	threadID, passed := c.Params.Get("thread_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thread_id is required. pass it in the route /:thread_id"})
		return
	}

	var req model2.SendDraft
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
			return
		}
	}

	var scheduledSendAt time.Time
	if req.ScheduledSendAt != "" {
		parsed, err := time.Parse("2006-01-02T15:04:05Z07:00", req.ScheduledSendAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
			return
		}
		scheduledSendAt = parsed
	}

	draftID, err := a.pitchline.Autosave().Send(c.Request.Context(), threadID, scheduledSendAt)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"thread_id": threadID, "draft_id": draftID, "status": "sent"})
}

func (a Api) GetDraft(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.pitchline.GetDraft(c.Request.Context(), id)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetDraftByThread(c *gin.Context) {
	threadID, passed := c.Params.Get("thread_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thread_id is required. pass it in the route /:thread_id"})
		return
	}

	resp, err := a.pitchline.GetDraftByThread(c.Request.Context(), threadID)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
