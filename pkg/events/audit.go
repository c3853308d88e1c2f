package events

import (
	"context"

	"github.com/MaverickLook/Big-Bite/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
)

const auditService = "big-bite"

type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *repository.AuditLog) error
}

// AuditSink records every event as an audit log entry keyed by order id.
type AuditSink struct {
	writer AuditWriter
}

func NewAuditSink(w AuditWriter) *AuditSink {
	return &AuditSink{writer: w}
}

func (s *AuditSink) Name() string { return "audit" }

func (s *AuditSink) Handle(ctx context.Context, e Event) error {
	data := bson.M{
		"user_id":     e.UserID,
		"to":          string(e.To),
		"total_price": e.TotalPrice,
		"item_count":  e.ItemCount,
	}
	if e.From != "" {
		data["from"] = string(e.From)
	}

	return s.writer.CreateAuditLog(ctx, &repository.AuditLog{
		Service:   auditService,
		Action:    string(e.Type),
		EntityID:  e.OrderID,
		Data:      data,
		CreatedAt: e.At,
	})
}
