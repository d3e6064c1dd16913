// Package tagregistry maps tags to handlers, scoped by domain.
//
// A tag belongs to exactly one domain at a time: registering it again under a
// different domain moves the global tag→domain mapping to the new domain. The
// earlier domain keeps the tag in its own set and keeps its handler.
package tagregistry

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/zjrosen/hoard/internal/log"
)

// Registry errors
var (
	ErrEmptyTag    = errors.New("tag cannot be empty")
	ErrEmptyDomain = errors.New("domain cannot be empty")
)

// Handler resolves a tag to behavior.
type Handler func(ctx context.Context, tag string) (any, error)

// Registry holds domain-scoped tag registrations. Tags and domains are
// compared case-insensitively.
type Registry struct {
	mu sync.Mutex

	tagsByDomain     map[string]map[string]struct{}
	handlersByDomain map[string]map[string]Handler
	domainByTag      map[string]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		tagsByDomain:     make(map[string]map[string]struct{}),
		handlersByDomain: make(map[string]map[string]Handler),
		domainByTag:      make(map[string]string),
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register adds tag to domain. A nil handler registers the tag without
// behavior and leaves any existing handler in place.
func (r *Registry) Register(tag, domain string, handler Handler) error {
	tag, domain = normalize(tag), normalize(domain)
	if tag == "" {
		return ErrEmptyTag
	}
	if domain == "" {
		return ErrEmptyDomain
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tags, ok := r.tagsByDomain[domain]
	if !ok {
		tags = make(map[string]struct{})
		r.tagsByDomain[domain] = tags
	}
	tags[tag] = struct{}{}

	if handler != nil {
		handlers, ok := r.handlersByDomain[domain]
		if !ok {
			handlers = make(map[string]Handler)
			r.handlersByDomain[domain] = handlers
		}
		handlers[tag] = handler
	}

	if prev, ok := r.domainByTag[tag]; ok && prev != domain {
		log.Warn(log.CatRegistry, "tag moved to another domain", "tag", tag, "from", prev, "to", domain)
	}
	r.domainByTag[tag] = domain
	return nil
}

// Unregister removes tag from domain along with its handler. The global
// mapping is cleared only while it still points at domain.
func (r *Registry) Unregister(tag, domain string) bool {
	tag, domain = normalize(tag), normalize(domain)

	r.mu.Lock()
	defer r.mu.Unlock()

	tags, ok := r.tagsByDomain[domain]
	if !ok {
		return false
	}
	if _, ok := tags[tag]; !ok {
		return false
	}
	delete(tags, tag)
	if len(tags) == 0 {
		delete(r.tagsByDomain, domain)
	}
	if handlers, ok := r.handlersByDomain[domain]; ok {
		delete(handlers, tag)
		if len(handlers) == 0 {
			delete(r.handlersByDomain, domain)
		}
	}
	if r.domainByTag[tag] == domain {
		delete(r.domainByTag, tag)
	}
	return true
}

// IsRegistered reports whether tag is in domain's set.
func (r *Registry) IsRegistered(tag, domain string) bool {
	tag, domain = normalize(tag), normalize(domain)

	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.tagsByDomain[domain][tag]
	return ok
}

// Execute runs the handler registered for tag in domain. It returns nil, nil
// when the tag is unknown or has no handler. Handler errors are returned
// unchanged. The handler runs without the registry lock held.
func (r *Registry) Execute(ctx context.Context, tag, domain string) (any, error) {
	tag, domain = normalize(tag), normalize(domain)

	r.mu.Lock()
	handler := r.handlersByDomain[domain][tag]
	r.mu.Unlock()

	if handler == nil {
		return nil, nil
	}
	log.Debug(log.CatRegistry, "executing tag handler", "tag", tag, "domain", domain)
	return handler(ctx, tag)
}

// TagsFor returns domain's tags in sorted order.
func (r *Registry) TagsFor(domain string) []string {
	domain = normalize(domain)

	r.mu.Lock()
	defer r.mu.Unlock()

	tags := make([]string, 0, len(r.tagsByDomain[domain]))
	for tag := range r.tagsByDomain[domain] {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// DomainFor returns the domain that most recently registered tag.
func (r *Registry) DomainFor(tag string) (string, bool) {
	tag = normalize(tag)

	r.mu.Lock()
	defer r.mu.Unlock()

	domain, ok := r.domainByTag[tag]
	return domain, ok
}

// Domains returns every domain with at least one tag, sorted.
func (r *Registry) Domains() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	domains := make([]string, 0, len(r.tagsByDomain))
	for domain := range r.tagsByDomain {
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	return domains
}
