package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/standupbot/models"
	"github.com/cppla/standupbot/services"
	"github.com/cppla/standupbot/utils"
)

// SubmissionQuery lists submissions; userID 0 means every user.
type SubmissionQuery interface {
	Submissions(ctx context.Context, userID uint, f services.DateFilter) ([]models.Submission, error)
}

// SubmissionPurger removes old submissions.
type SubmissionPurger interface {
	PurgeBeforeToday(ctx context.Context) (int64, error)
}

type SubmissionController struct {
	query  SubmissionQuery
	purger SubmissionPurger
	log    *zap.Logger
}

func NewSubmissionController(query SubmissionQuery, purger SubmissionPurger, log *zap.Logger) *SubmissionController {
	return &SubmissionController{query: query, purger: purger, log: log}
}

// List returns submissions newest first within the optional start_date/end_date window.
func (s *SubmissionController) List(ctx *gin.Context) {
	s.list(ctx, 0)
}

// ListForUser is List restricted to the user with database id :user_id.
func (s *SubmissionController) ListForUser(ctx *gin.Context) {
	id, ok := idParam(ctx, "user_id")
	if !ok {
		return
	}
	s.list(ctx, id)
}

func (s *SubmissionController) list(ctx *gin.Context, userID uint) {
	subs, err := s.query.Submissions(ctx.Request.Context(), userID, dateFilter(ctx))
	if err != nil {
		respondError(ctx, s.log, err)
		return
	}
	utils.Success(ctx, subs)
}

// DeleteOld removes every submission created before today.
func (s *SubmissionController) DeleteOld(ctx *gin.Context) {
	n, err := s.purger.PurgeBeforeToday(ctx.Request.Context())
	if err != nil {
		respondError(ctx, s.log, err)
		return
	}
	utils.Success(ctx, gin.H{"deleted": n})
}
