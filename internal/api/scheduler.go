package api

import (
	"context"
	"time"
)

type schedulerStatusResponse struct {
	Running       bool       `json:"running"`
	NextRun       *time.Time `json:"next_run,omitempty"`
	Timezone      string     `json:"timezone"`
	ScheduledTime string     `json:"scheduled_time"`
}

type runNowResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (h *handlers) schedulerStatus(ctx context.Context) schedulerStatusResponse {
	resp := schedulerStatusResponse{
		Running:       h.scheduler.Running(),
		Timezone:      h.scheduler.Timezone(),
		ScheduledTime: h.scheduler.ScheduledTime(),
	}
	if next, ok := h.scheduler.NextRunTime(); ok {
		resp.NextRun = &next
	}
	return resp
}

func (h *handlers) schedulerRunNow(ctx context.Context) runNowResponse {
	h.scheduler.RunNow()
	return runNowResponse{Message: "update job started", Status: "running"}
}
