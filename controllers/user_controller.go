package controllers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/services"
	"github.com/cppla/standupbot/utils"
)

// UserManager is the admin CRUD for bot users.
type UserManager interface {
	Create(ctx context.Context, in services.UserInput) (services.UserView, error)
	Update(ctx context.Context, id uint, patch services.UserPatch) (services.UserView, error)
	Get(ctx context.Context, username string) (services.UserView, error)
	List(ctx context.Context) ([]services.UserView, error)
}

type UserController struct {
	users UserManager
	log   *zap.Logger
}

func NewUserController(users UserManager, log *zap.Logger) *UserController {
	return &UserController{users: users, log: log}
}

type userRequest struct {
	SlackID  string   `json:"user_id" binding:"required"`
	Username string   `json:"username" binding:"required"`
	IsActive *bool    `json:"is_active"`
	Teams    []string `json:"teams"`
}

type userPatchRequest struct {
	SlackID  *string   `json:"user_id"`
	Username *string   `json:"username"`
	IsActive *bool     `json:"is_active"`
	Teams    *[]string `json:"teams"`
}

func (u *UserController) Create(ctx *gin.Context) {
	var req userRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "invalid request payload")
		return
	}
	view, err := u.users.Create(ctx.Request.Context(), services.UserInput{
		SlackID:  req.SlackID,
		Username: req.Username,
		IsActive: req.IsActive,
		Teams:    req.Teams,
	})
	if err != nil {
		respondError(ctx, u.log, err)
		return
	}
	utils.Created(ctx, view)
}

func (u *UserController) Update(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req userPatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "invalid request payload")
		return
	}
	view, err := u.users.Update(ctx.Request.Context(), id, services.UserPatch{
		SlackID:  req.SlackID,
		Username: req.Username,
		IsActive: req.IsActive,
		Teams:    req.Teams,
	})
	if err != nil {
		respondError(ctx, u.log, err)
		return
	}
	utils.Success(ctx, view)
}

func (u *UserController) Get(ctx *gin.Context) {
	view, err := u.users.Get(ctx.Request.Context(), strings.TrimSpace(ctx.Param("username")))
	if err != nil {
		respondError(ctx, u.log, err)
		return
	}
	utils.Success(ctx, view)
}

func (u *UserController) List(ctx *gin.Context) {
	list, err := u.users.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, u.log, err)
		return
	}
	utils.Success(ctx, list)
}
