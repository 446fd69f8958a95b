package archive

import (
	"fmt"
	"log/slog"
)

// definitions instantiates the shared repository operations once per
// content kind. Default sorts favor the most recent publication except
// for the curated archive collections, which follow manual ordering.
var definitions = []Definition{
	{
		Kind:           KindDocument,
		DefaultSort:    Sort{Field: "published_at", Desc: true},
		ValidateCreate: requireCover,
		ValidateUpdate: defaultUpdate,
	},
	{
		Kind:           KindTestimonial,
		DefaultSort:    Sort{Field: "created_at", Desc: true},
		ValidateCreate: testimonialCreate,
		ValidateUpdate: testimonialUpdate,
	},
	{
		Kind:           KindReference,
		DefaultSort:    Sort{Field: "title", Desc: false},
		ValidateCreate: requireCover,
		ValidateUpdate: defaultUpdate,
	},
	{
		Kind:           KindJournal,
		DefaultSort:    Sort{Field: "published_at", Desc: true},
		ValidateCreate: requireCover,
		ValidateUpdate: defaultUpdate,
	},
	{
		Kind:           KindPhotoArchive,
		DefaultSort:    Sort{Field: "sort_order", Desc: false},
		ValidateCreate: requireCover,
		ValidateUpdate: defaultUpdate,
	},
	{
		Kind:           KindPersonalArchive,
		DefaultSort:    Sort{Field: "sort_order", Desc: false},
		ValidateCreate: requireCover,
		ValidateUpdate: defaultUpdate,
	},
}

// Service bundles the six content modules behind one injected store.
type Service struct {
	store   Store
	logger  *slog.Logger
	modules map[Kind]*Module
}

// Option configures a Service.
type Option func(*Service)

// WithStore sets the persistence backend. Required.
func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New builds the service and instantiates all six modules.
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, option := range options {
		option(s)
	}
	if s.store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.modules = make(map[Kind]*Module, len(definitions))
	for _, def := range definitions {
		s.modules[def.Kind] = NewModule(s.store, def)
	}
	return s, nil
}

// Module returns the operation set for one content kind.
func (s *Service) Module(kind Kind) (*Module, error) {
	module, ok := s.modules[kind]
	if !ok {
		return nil, &Error{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("unknown collection %q", kind),
			Err:     ErrUnknownKind,
		}
	}
	return module, nil
}

// Store exposes the underlying store for collaborators that run their
// own read-only queries, such as the health aggregator.
func (s *Service) Store() Store { return s.store }

// Logger returns the service logger.
func (s *Service) Logger() *slog.Logger { return s.logger }
