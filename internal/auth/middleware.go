package auth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/observability"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"
	warningsKey  = "auth_warnings"
	tokensKey    = "auth_tokens"
)

// SlotSource names where a slot's token is read from.
type SlotSource struct {
	Slot   domain.SessionSlot
	Header string
	Cookie string
}

// SlotSources lists the three session slots in precedence order.
var SlotSources = []SlotSource{
	{Slot: domain.SessionSlotAdmin, Header: "X-Admin-Session", Cookie: "admin_session"},
	{Slot: domain.SessionSlotMember, Header: "X-Member-Session", Cookie: "member_session"},
	{Slot: domain.SessionSlotGuest, Header: "X-Guest-Session", Cookie: "guest_session"},
}

// RevocationList records logged-out token ids until they expire.
type RevocationList interface {
	Revoke(ctx context.Context, id string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// CapabilityResolver attaches capabilities to a principal.
type CapabilityResolver interface {
	Resolve(ctx context.Context, p access.Principal) (access.Principal, error)
}

// Warning is a non-blocking notice surfaced with the response.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionMiddleware reads the session slots of every request and stores the
// resolved principal. It never rejects a request; endpoints that need an
// identity or capability guard themselves with RequireAuthenticated and
// RequireCapability.
type SessionMiddleware struct {
	tokens      *TokenManager
	revocations RevocationList
	resolver    CapabilityResolver
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewSessionMiddleware constructs middleware. revocations and metrics may be nil.
func NewSessionMiddleware(tokens *TokenManager, revocations RevocationList, resolver CapabilityResolver, metrics *observability.Metrics, logger *zap.Logger) *SessionMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionMiddleware{tokens: tokens, revocations: revocations, resolver: resolver, metrics: metrics, logger: logger}
}

// Handle resolves the principal for the request.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sc, tokens := m.readSessions(c)
	principal := access.Resolve(sc)

	resolved, err := m.resolver.Resolve(ctx, principal)
	outcome := "ok"
	if err != nil {
		outcome = "fail_closed"
		m.logger.Warn("capability resolution failed closed",
			zap.String("principal_id", principal.ID),
			zap.String("principal_kind", string(principal.Kind)),
			zap.Error(err))
		AddWarning(c, Warning{
			Code:    apperrors.CodeStoreUnavailable,
			Message: "permissions could not be loaded; access is limited until the store recovers",
		})
	}
	m.metrics.RecordResolution(string(principal.Kind), outcome)

	c.Locals(principalKey, resolved)
	c.Locals(tokensKey, tokens)
	c.Locals(observability.PrincipalKindLocal, string(resolved.Kind))
	return c.Next()
}

// readSessions builds the session context from headers or cookies. Tokens
// that fail validation or were revoked leave their slot empty.
func (m *SessionMiddleware) readSessions(c *fiber.Ctx) (access.SessionContext, map[domain.SessionSlot]domain.Token) {
	var sc access.SessionContext
	tokens := map[domain.SessionSlot]domain.Token{}
	for _, src := range SlotSources {
		raw := c.Get(src.Header)
		if raw == "" {
			raw = c.Cookies(src.Cookie)
		}
		if raw == "" {
			continue
		}
		claims, err := m.tokens.ParseToken(raw)
		if err != nil || claims.Slot != src.Slot {
			m.logger.Debug("ignoring session token", zap.String("slot", string(src.Slot)), zap.Error(err))
			continue
		}
		if m.revoked(c.UserContext(), claims.ID) {
			continue
		}
		session := claims.Session
		switch src.Slot {
		case domain.SessionSlotAdmin:
			sc.Admin = &session
		case domain.SessionSlotMember:
			sc.Member = &session
		case domain.SessionSlotGuest:
			sc.Guest = &session
		}
		tokens[src.Slot] = claims.Meta()
	}
	return sc, tokens
}

func (m *SessionMiddleware) revoked(ctx context.Context, id string) bool {
	if m.revocations == nil || id == "" {
		return false
	}
	revoked, err := m.revocations.IsRevoked(ctx, id)
	if err != nil {
		// an unreadable revocation list must not resurrect a logged-out session
		m.logger.Warn("revocation check failed", zap.String("token_id", id), zap.Error(err))
		return true
	}
	return revoked
}

// PrincipalFromContext retrieves the resolved principal. Requests that did
// not pass the session middleware yield the anonymous principal.
func PrincipalFromContext(c *fiber.Ctx) access.Principal {
	if p, ok := c.Locals(principalKey).(access.Principal); ok {
		return p
	}
	return access.Anonymous()
}

// SessionTokens returns metadata of the valid tokens presented, by slot.
func SessionTokens(c *fiber.Ctx) map[domain.SessionSlot]domain.Token {
	if t, ok := c.Locals(tokensKey).(map[domain.SessionSlot]domain.Token); ok {
		return t
	}
	return map[domain.SessionSlot]domain.Token{}
}

// AddWarning appends a non-blocking warning to the request.
func AddWarning(c *fiber.Ctx, w Warning) {
	c.Locals(warningsKey, append(Warnings(c), w))
}

// Warnings returns the warnings collected for the request.
func Warnings(c *fiber.Ctx) []Warning {
	if w, ok := c.Locals(warningsKey).([]Warning); ok {
		return w
	}
	return []Warning{}
}
