package http

import "github.com/filmschedule/filmschedule-backend/internal/projects/service"

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc *service.ProjectService
}

func New(svc *service.ProjectService) *Handler {
	return &Handler{svc: svc}
}

type listQuery struct {
	IncludeArchived bool `form:"include_archived"`
}

type deleteResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type toggleResp struct {
	Success  bool   `json:"success"`
	Archived bool   `json:"archived"`
	Message  string `json:"message"`
}
