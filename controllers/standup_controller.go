package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/services"
	"github.com/cppla/standupbot/utils"
)

// Publisher posts a team's digest for today.
type Publisher interface {
	Publish(ctx context.Context, teamName string) (services.PublishResult, error)
}

// Notifier reminds team members who have not submitted.
type Notifier interface {
	Notify(ctx context.Context, teamName string) (services.NotifyResult, error)
}

// StandupManager is the admin CRUD for standups.
type StandupManager interface {
	Create(ctx context.Context, in services.StandupInput) (models.Standup, error)
	Update(ctx context.Context, id uint, patch services.StandupPatch) (models.Standup, error)
	Get(ctx context.Context, id uint) (models.Standup, error)
	Delete(ctx context.Context, id uint) error
}

// StandupLister answers filtered standup listings.
type StandupLister interface {
	Standups(ctx context.Context, status string, f services.DateFilter) ([]models.Standup, error)
}

// StandupController covers publishing, reminders and standup administration.
type StandupController struct {
	publisher Publisher
	notifier  Notifier
	standups  StandupManager
	query     StandupLister
	log       *zap.Logger
}

func NewStandupController(publisher Publisher, notifier Notifier, standups StandupManager, query StandupLister, log *zap.Logger) *StandupController {
	return &StandupController{publisher: publisher, notifier: notifier, standups: standups, query: query, log: log}
}

type standupRequest struct {
	Team           string   `json:"team" binding:"required"`
	Name           string   `json:"name"`
	Trigger        string   `json:"trigger" binding:"required"`
	Questions      []string `json:"questions" binding:"required,min=1"`
	IsActive       *bool    `json:"is_active"`
	PublishChannel string   `json:"publish_channel" binding:"required"`
}

type standupPatchRequest struct {
	Team           *string   `json:"team"`
	Name           *string   `json:"name"`
	Trigger        *string   `json:"trigger"`
	Questions      *[]string `json:"questions"`
	IsActive       *bool     `json:"is_active"`
	PublishChannel *string   `json:"publish_channel"`
}

// Publish posts today's digest for :team_name. Slack failures still answer 200 with the code.
func (s *StandupController) Publish(ctx *gin.Context) {
	team := strings.TrimSpace(ctx.Param("team_name"))
	res, err := s.publisher.Publish(ctx.Request.Context(), team)
	if err != nil {
		var perr *services.PlatformError
		if errors.As(err, &perr) {
			s.log.Warn("publish incomplete", zap.String("team", team), zap.String("code", perr.Code))
			utils.Respond(ctx, http.StatusOK, utils.CodePlatform, "Failed due to "+perr.Code, res)
			return
		}
		respondError(ctx, s.log, err)
		return
	}
	utils.Success(ctx, res)
}

// Notify DMs reminders to members of :team_name who are behind.
func (s *StandupController) Notify(ctx *gin.Context) {
	res, err := s.notifier.Notify(ctx.Request.Context(), strings.TrimSpace(ctx.Param("team_name")))
	if err != nil {
		respondError(ctx, s.log, err)
		return
	}
	utils.Success(ctx, res)
}

func (s *StandupController) Create(ctx *gin.Context) {
	var req standupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "invalid request payload")
		return
	}
	st, err := s.standups.Create(ctx.Request.Context(), services.StandupInput{
		Team:           req.Team,
		Name:           req.Name,
		Trigger:        req.Trigger,
		Questions:      req.Questions,
		IsActive:       req.IsActive,
		PublishChannel: req.PublishChannel,
	})
	if err != nil {
		respondError(ctx, s.log, err)
		return
	}
	utils.Created(ctx, st)
}

func (s *StandupController) Update(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req standupPatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "invalid request payload")
		return
	}
	st, err := s.standups.Update(ctx.Request.Context(), id, services.StandupPatch{
		Team:           req.Team,
		Name:           req.Name,
		Trigger:        req.Trigger,
		Questions:      req.Questions,
		IsActive:       req.IsActive,
		PublishChannel: req.PublishChannel,
	})
	if err != nil {
		respondError(ctx, s.log, err)
		return
	}
	utils.Success(ctx, st)
}

func (s *StandupController) Get(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	st, err := s.standups.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, s.log, err)
		return
	}
	utils.Success(ctx, st)
}

// List filters by ?status=active|inactive|all and the start_date/end_date window.
func (s *StandupController) List(ctx *gin.Context) {
	list, err := s.query.Standups(ctx.Request.Context(), ctx.Query("status"), dateFilter(ctx))
	if err != nil {
		respondError(ctx, s.log, err)
		return
	}
	utils.Success(ctx, list)
}

func (s *StandupController) Delete(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := s.standups.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, s.log, err)
		return
	}
	utils.Success(ctx, gin.H{"id": id})
}
