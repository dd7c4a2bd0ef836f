package access

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fieldops/field-console/internal/domain"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// DefaultMemberCapabilities is granted to every authenticated guest or member.
var DefaultMemberCapabilities = []string{string(CapHierarchyView)}

// PermissionStore is the read side of the grant tables. Grant rows must carry
// their Permission.
type PermissionStore interface {
	TeamsForAgent(ctx context.Context, agentID string) ([]domain.Team, error)
	TeamGrants(ctx context.Context, teamID string) ([]domain.TeamPermission, error)
	UserGrants(ctx context.Context, adminUserID string) ([]domain.UserPermission, error)
}

// CapabilityCache stores resolved capability keys per principal. Entries are
// partitioned by generation; InvalidateAll moves to a new generation so a
// value computed before a grant change can never be read after it.
type CapabilityCache interface {
	Generation(ctx context.Context) (uint64, error)
	Get(ctx context.Context, gen uint64, key string) ([]string, bool, error)
	Set(ctx context.Context, gen uint64, key string, caps []string) error
	InvalidateAll(ctx context.Context) error
}

// Aggregator resolves the capability set of a principal.
type Aggregator struct {
	store  PermissionStore
	cache  CapabilityCache
	logger *zap.Logger
	group  singleflight.Group
	epoch  atomic.Uint64
	// set while the cache may still serve a generation older than the last
	// committed grant change
	stale atomic.Bool
}

// NewAggregator constructs an Aggregator. cache may be nil.
func NewAggregator(store PermissionStore, cache CapabilityCache, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{store: store, cache: cache, logger: logger}
}

// ResolveCapabilities computes the capability set for p. On store failure it
// returns an empty set together with a STORE_UNAVAILABLE error.
func (a *Aggregator) ResolveCapabilities(ctx context.Context, p Principal) (CapabilitySet, error) {
	switch {
	case p.Kind.IsAdmin():
		return AllCapabilities(), nil
	case p.Kind == KindTeamMemberAdmin:
		return a.resolveTeamMember(ctx, p.AgentID)
	case p.Authenticated():
		return NewCapabilitySet(DefaultMemberCapabilities...), nil
	default:
		return CapabilitySet{}, nil
	}
}

// Resolve returns p carrying its resolved capabilities.
func (a *Aggregator) Resolve(ctx context.Context, p Principal) (Principal, error) {
	caps, err := a.ResolveCapabilities(ctx, p)
	return p.WithCapabilities(caps), err
}

// ExplicitGrants lists the active permission names granted to p directly or
// through its teams, sorted. Admins bypass these for decisions.
func (a *Aggregator) ExplicitGrants(ctx context.Context, p Principal) ([]string, error) {
	set := CapabilitySet{}
	if p.AdminUserID != "" {
		grants, err := a.store.UserGrants(ctx, p.AdminUserID)
		if err != nil {
			return nil, apperrors.NewStoreUnavailable(err)
		}
		names := make([]string, 0, len(grants))
		for _, g := range grants {
			if g.Permission != nil && g.Permission.IsActive {
				names = append(names, g.Permission.Name)
			}
		}
		set = set.Union(NewCapabilitySet(names...))
	}
	if p.Kind == KindTeamMemberAdmin {
		teamSet, err := a.loadTeamCapabilities(ctx, p.AgentID)
		if err != nil {
			return nil, err
		}
		set = set.Union(teamSet)
	}
	return set.Keys(), nil
}

// Invalidate drops every cached resolution. Called after each committed
// grant or revoke. If the cache cannot move to a new generation, resolutions
// bypass it until a later invalidation succeeds.
func (a *Aggregator) Invalidate(ctx context.Context) {
	a.epoch.Add(1)
	if a.cache == nil {
		return
	}
	a.stale.Store(true)
	if err := a.cache.InvalidateAll(ctx); err != nil {
		a.logger.Warn("capability cache invalidation failed; bypassing cache", zap.Error(err))
		return
	}
	a.stale.Store(false)
}

func (a *Aggregator) resolveTeamMember(ctx context.Context, agentID string) (CapabilitySet, error) {
	if agentID == "" {
		return CapabilitySet{}, nil
	}
	key := "agent:" + agentID

	gen, cached := a.generation(ctx)
	if cached {
		keys, ok, err := a.cache.Get(ctx, gen, key)
		if err != nil {
			a.logger.Warn("capability cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return NewCapabilitySet(keys...), nil
		}
	}

	// a flight started before an invalidation is never shared with callers after it
	flight := fmt.Sprintf("%s@%d.%d", key, gen, a.epoch.Load())
	v, err, _ := a.group.Do(flight, func() (any, error) {
		// shared by every caller that joins the flight
		loadCtx := context.WithoutCancel(ctx)
		set, err := a.loadTeamCapabilities(loadCtx, agentID)
		if err != nil {
			return nil, err
		}
		if cached {
			if err := a.cache.Set(loadCtx, gen, key, set.Keys()); err != nil {
				a.logger.Warn("capability cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return set, nil
	})
	if err != nil {
		return CapabilitySet{}, err
	}
	return v.(CapabilitySet), nil
}

func (a *Aggregator) generation(ctx context.Context) (uint64, bool) {
	if a.cache == nil {
		return 0, false
	}
	if a.stale.Load() {
		if err := a.cache.InvalidateAll(ctx); err != nil {
			a.logger.Warn("capability cache still stale", zap.Error(err))
			return 0, false
		}
		a.stale.Store(false)
	}
	gen, err := a.cache.Generation(ctx)
	if err != nil {
		a.logger.Warn("capability cache unavailable", zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (a *Aggregator) loadTeamCapabilities(ctx context.Context, agentID string) (CapabilitySet, error) {
	teams, err := a.store.TeamsForAgent(ctx, agentID)
	if err != nil {
		return CapabilitySet{}, apperrors.NewStoreUnavailable(err)
	}
	names := []string{}
	for _, team := range teams {
		if !team.IsActive {
			continue
		}
		grants, err := a.store.TeamGrants(ctx, team.ID)
		if err != nil {
			return CapabilitySet{}, apperrors.NewStoreUnavailable(err)
		}
		for _, g := range grants {
			if g.Permission == nil || !g.Permission.IsActive {
				continue
			}
			names = append(names, g.Permission.Name)
		}
	}
	return NewCapabilitySet(names...), nil
}
