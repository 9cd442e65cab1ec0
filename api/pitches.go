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

	"github.com/pitchline/pitchline"
	model2 "github.com/pitchline/pitchline/api/model"
)

func (a Api) CreatePitch(c *gin.Context) {
	var newPitch model2.CreatePitch
	if err := c.ShouldBindJSON(&newPitch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := newPitch.ValidateCreatePitch()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.pitchline.CreatePitchGeneration(c.Request.Context(), newPitch.ToPitchGeneration())
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetPitch(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.pitchline.GetPitchGeneration(c.Request.Context(), id)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) UpdatePitchContent(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var req model2.UpdatePitchContent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateUpdatePitchContent(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.pitchline.UpdatePitchContent(c.Request.Context(), id, req.SubjectLine, req.DraftText, req.RecipientEmail)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) ApprovePitch(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.pitchline.ApprovePitch(c.Request.Context(), id)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) SendPitch(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.pitchline.SendPitch(c.Request.Context(), id)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

func (a Api) SchedulePitch(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var req model2.SchedulePitch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateSchedulePitch(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	var sendAt time.Time
	var err error
	if req.Preset != "" {
		sendAt, err = pitchline.ResolvePreset(req.Preset, time.Now())
	} else {
		sendAt, err = time.Parse("2006-01-02T15:04:05Z07:00", req.SendAt)
	}
	if err != nil {
		apiError(c, err)
		return
	}

	resp, err := a.pitchline.SchedulePitch(c.Request.Context(), id, sendAt)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

func (a Api) BulkSendPitches(c *gin.Context) {
	var req model2.BulkSendPitches
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateBulkSendPitches(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	result := a.pitchline.BulkSendPitches(c.Request.Context(), req.IDs)
	c.JSON(bulkStatus(result), gin.H{"outcome": result.Outcome(), "result": result})
}

func (a Api) CreateFollowUp(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var req model2.CreateFollowUp
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateCreateFollowUp(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.pitchline.CreateFollowUp(c.Request.Context(), id, req.DraftText, req.SubjectLine)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) ScheduleFollowUp(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.pitchline.ScheduleFollowUp(c.Request.Context(), id)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

func (a Api) RecordDeliveryEvent(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var req model2.RecordDeliveryEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateRecordDeliveryEvent(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.pitchline.RecordDeliveryEvent(c.Request.Context(), id, req.Event)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) CreateMatchSuggestion(c *gin.Context) {
	var newMatch model2.CreateMatchSuggestion
	if err := c.ShouldBindJSON(&newMatch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := newMatch.ValidateCreateMatchSuggestion()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.pitchline.CreateMatchSuggestion(c.Request.Context(), newMatch.ToMatchSuggestion())
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetMatchSuggestion(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.pitchline.GetMatchSuggestion(c.Request.Context(), id)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
