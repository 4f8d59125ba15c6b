package handler

import (
	"clipz-ai/internal/service"
)

type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) Handler {
	return Handler{Service: svc}
}
