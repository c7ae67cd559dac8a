package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/clearwire/internal/audit/domain"
	obscontext "github.com/smallbiznis/clearwire/internal/observability/context"
	"github.com/smallbiznis/clearwire/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node

	auditrepo repository.Repository[auditdomain.AuditLog]
}

func NewService(p ServiceParam) auditdomain.Service {
	return &Service{
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,

		auditrepo: repository.ProvideStore[auditdomain.AuditLog](p.DB),
	}
}

func (s *Service) AuditLog(ctx context.Context, action, targetType, targetID string, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}

	entry := &auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		RequestID:  obscontext.RequestIDFromContext(ctx),
		Metadata:   metadata,
	}

	if err := s.auditrepo.Create(ctx, entry); err != nil {
		s.log.Warn("audit log write failed",
			zap.String("action", action),
			zap.String("target_id", targetID),
			zap.Error(err),
		)
	}
}
