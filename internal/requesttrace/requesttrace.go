package requesttrace

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ctxAuditInfo contextKey = "KOE_REQUEST_TRACE"

// ActorKind represents who initiated a request.
type ActorKind string

const (
	ActorKindUser      ActorKind = "user"
	ActorKindAnonymous ActorKind = "anonymous"
	ActorKindSystem    ActorKind = "system"
)

// AuditInfo captures request-scoped metadata stamped onto audit events.
// UserID is set only when ActorKind is user.
type AuditInfo struct {
	ActorKind ActorKind
	UserID    *uuid.UUID
	RequestID string
	IPAddress string
	UserAgent string
}

func IntoContext(ctx context.Context, audit AuditInfo) context.Context {
	return context.WithValue(ctx, ctxAuditInfo, audit)
}

func FromContext(ctx context.Context) (AuditInfo, bool) {
	if ctx == nil {
		return AuditInfo{}, false
	}
	audit, ok := ctx.Value(ctxAuditInfo).(AuditInfo)
	return audit, ok
}

// FromContextOrSystem returns the stored AuditInfo, or a system record when absent (CLI, tests).
func FromContextOrSystem(ctx context.Context) AuditInfo {
	if audit, ok := FromContext(ctx); ok {
		return audit
	}
	return System("")
}

func ForUser(userID uuid.UUID, requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindUser, UserID: &userID, RequestID: requestID}
}

func Anonymous(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindAnonymous, RequestID: requestID}
}

func System(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindSystem, RequestID: requestID}
}

// Authenticated reports whether a principal performed the request.
func (a AuditInfo) Authenticated() bool {
	return a.ActorKind == ActorKindUser && a.UserID != nil
}
