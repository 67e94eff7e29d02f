package audit

import (
	"context"

	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
)

type contextKey int

const (
	actorKey contextKey = iota
	ipKey
)

// SystemActor is recorded when no caller identity is attached to the context.
const SystemActor = "system"

// WithActor attaches the caller identity and remote address used by Log.
// Controllers set it; services never depend on the web layer.
func WithActor(ctx context.Context, actor, ip string) context.Context {
	ctx = context.WithValue(ctx, actorKey, actor)
	return context.WithValue(ctx, ipKey, ip)
}

type AuditService struct {
	repo ports.AuditRepository
}

func NewAuditService(repo ports.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Log(ctx context.Context, action domain.AuditAction, target, details string) error {
	actor := SystemActor
	if a, ok := ctx.Value(actorKey).(string); ok && a != "" {
		actor = a
	}
	ip, _ := ctx.Value(ipKey).(string)

	// Use Domain Factory to ensure business rules
	entry, err := domain.NewAuditLog(actor, action, target, details, ip)
	if err != nil {
		return err
	}

	return s.repo.SaveAuditLog(ctx, *entry)
}

func (s *AuditService) GetLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	return s.repo.ListAuditLogs(ctx, limit)
}
