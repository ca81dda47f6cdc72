package controllers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/services"
	"github.com/cppla/standupbot/utils"
)

// TeamManager is the admin CRUD for teams.
type TeamManager interface {
	Create(ctx context.Context, in services.TeamInput) (services.TeamView, error)
	Update(ctx context.Context, id uint, patch services.TeamPatch) (services.TeamView, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, name string) (services.TeamView, error)
	List(ctx context.Context) ([]services.TeamView, error)
}

type TeamController struct {
	teams TeamManager
	log   *zap.Logger
}

func NewTeamController(teams TeamManager, log *zap.Logger) *TeamController {
	return &TeamController{teams: teams, log: log}
}

type teamRequest struct {
	Name    string   `json:"name" binding:"required"`
	Members []string `json:"members"`
}

type teamPatchRequest struct {
	Name    *string   `json:"name"`
	Members *[]string `json:"members"`
}

func (t *TeamController) Create(ctx *gin.Context) {
	var req teamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "invalid request payload")
		return
	}
	view, err := t.teams.Create(ctx.Request.Context(), services.TeamInput{Name: req.Name, Members: req.Members})
	if err != nil {
		respondError(ctx, t.log, err)
		return
	}
	utils.Created(ctx, view)
}

func (t *TeamController) Update(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req teamPatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "invalid request payload")
		return
	}
	view, err := t.teams.Update(ctx.Request.Context(), id, services.TeamPatch{Name: req.Name, Members: req.Members})
	if err != nil {
		respondError(ctx, t.log, err)
		return
	}
	utils.Success(ctx, view)
}

func (t *TeamController) Get(ctx *gin.Context) {
	view, err := t.teams.Get(ctx.Request.Context(), strings.TrimSpace(ctx.Param("team_name")))
	if err != nil {
		respondError(ctx, t.log, err)
		return
	}
	utils.Success(ctx, view)
}

func (t *TeamController) List(ctx *gin.Context) {
	list, err := t.teams.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, t.log, err)
		return
	}
	utils.Success(ctx, list)
}

// Delete removes a team and its memberships. Teams still referenced by a standup answer 409.
func (t *TeamController) Delete(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := t.teams.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, t.log, err)
		return
	}
	utils.Success(ctx, gin.H{"id": id})
}
