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
	"strconv"

	"github.com/gin-gonic/gin"

	model2 "github.com/pitchline/pitchline/api/model"
	"github.com/pitchline/pitchline/model"
)

func (a Api) CreateReviewTask(c *gin.Context) {
	var newTask model2.CreateReviewTask
	if err := c.ShouldBindJSON(&newTask); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := newTask.ValidateCreateReviewTask()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.pitchline.CreateReviewTask(c.Request.Context(), newTask.ToReviewTask())
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) GetReviewTask(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.pitchline.GetReviewTask(c.Request.Context(), id)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) GetReviewTasksByStatus(c *gin.Context) {
	status := c.DefaultQuery("status", model.TaskStatusPending)
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}

	resp, err := a.pitchline.GetReviewTasksByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) ApproveReviewTask(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var req model2.ApproveReviewTask
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
			return
		}
	}

	resp, err := a.pitchline.ApproveReviewTask(c.Request.Context(), id, req.Notes)
	if err != nil {
		apiError(c, err)
		return
	}

	// An already-processed task reports 200 with already_terminal set, not
	// an error: the desired end state holds.
	c.JSON(http.StatusOK, resp)
}

func (a Api) RejectReviewTask(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var req model2.RejectReviewTask
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
			return
		}
	}

	resp, err := a.pitchline.RejectReviewTask(c.Request.Context(), id, req.Reason, req.Notes)
	if err != nil {
		apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) BulkApproveReviewTasks(c *gin.Context) {
	var req model2.BulkReviewTasks
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateBulkReviewTasks(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	result := a.pitchline.BulkApproveReviewTasks(c.Request.Context(), req.IDs, req.Notes)
	c.JSON(bulkStatus(result), gin.H{"outcome": result.Outcome(), "result": result})
}

func (a Api) BulkRejectReviewTasks(c *gin.Context) {
	var req model2.BulkReviewTasks
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.ValidateBulkReviewTasks(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	result := a.pitchline.BulkRejectReviewTasks(c.Request.Context(), req.IDs, req.Reason, req.Notes)
	c.JSON(bulkStatus(result), gin.H{"outcome": result.Outcome(), "result": result})
}

// bulkStatus maps the three renderable bulk outcomes onto status codes:
// total failure is a 422, anything with at least one success is a 207
// unless everything succeeded.
func bulkStatus(result *model.BulkOperationResult) int {
	switch result.Outcome() {
	case model.BulkAllFailed:
		return http.StatusUnprocessableEntity
	case model.BulkPartiallyFailed:
		return http.StatusMultiStatus
	default:
		return http.StatusOK
	}
}
