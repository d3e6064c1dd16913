package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/log"
	"github.com/zjrosen/hoard/internal/tagregistry"
)

// DefaultTagDomain holds tags that have no "namespace:" prefix.
const DefaultTagDomain = "general"

// TagDomain returns the registry domain a catalog tag is filed under: its
// namespace, or DefaultTagDomain.
func TagDomain(tag string) string {
	ns, _ := inventory.TagNamespace(tag)
	if ns == "" {
		return DefaultTagDomain
	}
	return ns
}

// ExecuteTag runs the handler registered for tag in domain. It returns nil,
// nil when nothing is registered. Handler errors are returned unchanged.
func (s *Service) ExecuteTag(ctx context.Context, tag, domain string) (any, error) {
	return s.tags.Execute(ctx, tag, domain)
}

// TagResult is one handler outcome from RunTagHandlers.
type TagResult struct {
	Tag    string
	Result any
}

// RunTagHandlers executes the handler of every tag the asset carries that is
// registered in domain. The first handler error stops the run.
func (s *Service) RunTagHandlers(ctx context.Context, asset inventory.Asset, domain string) ([]TagResult, error) {
	var out []TagResult
	for _, tag := range asset.Tags {
		if !s.tags.IsRegistered(tag, domain) {
			continue
		}
		res, err := s.tags.Execute(ctx, tag, domain)
		if err != nil {
			return out, fmt.Errorf("tag %s: %w", tag, err)
		}
		out = append(out, TagResult{Tag: tag, Result: res})
	}
	return out, nil
}

// syncTags keeps one registration per catalog tag, filed under TagDomain.
// Each carries a handler listing the assets with that tag. Registrations made
// by integrations are left alone. Keys are lowercased to match the registry.
func (s *Service) syncTags() {
	s.tagsMu.Lock()
	defer s.tagsMu.Unlock()

	type entry struct{ tag, domain string }
	live := make(map[string]entry)
	for _, tc := range s.catalog.Tags() {
		key := strings.ToLower(tc.Tag)
		if _, dup := live[key]; dup {
			continue
		}
		live[key] = entry{tag: tc.Tag, domain: strings.ToLower(TagDomain(tc.Tag))}
	}

	for key, domain := range s.autoTags {
		if e, ok := live[key]; ok && e.domain == domain {
			continue
		}
		s.tags.Unregister(key, domain)
		delete(s.autoTags, key)
	}

	for key, e := range live {
		if _, ok := s.autoTags[key]; ok {
			continue
		}
		if s.tags.IsRegistered(key, e.domain) {
			continue
		}
		if err := s.tags.Register(key, e.domain, s.assetsWithTag(e.tag)); err != nil {
			log.ErrorErr(log.CatRegistry, "tag registration failed", err, "tag", e.tag)
			continue
		}
		s.autoTags[key] = e.domain
	}
}

// assetsWithTag lists every case variant of tag, since the registry key is
// lowercased while catalog tags keep their spelling.
func (s *Service) assetsWithTag(tag string) tagregistry.Handler {
	return func(context.Context, string) (any, error) {
		return s.catalog.QueryFunc(func(a inventory.Asset) bool {
			return a.HasTagFold(tag)
		}), nil
	}
}
