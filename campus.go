// Package campus is a student association and event directory.
//
// A Directory keeps users, associations and events in a document store and
// resolves the relationships between them on demand.
package campus

import (
	"context"
	"errors"
	"io"

	"github.com/nasdf/campus/core"
	"github.com/nasdf/campus/fixture"
	"github.com/nasdf/campus/metrics"
	"github.com/nasdf/campus/model"
	"github.com/nasdf/campus/ref"
	"github.com/nasdf/campus/schema"
	"github.com/nasdf/campus/storage"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Directory is a document store together with a fetcher resolving its references.
type Directory struct {
	store   *core.Store
	fetcher *ref.Fetcher
	log     *zap.Logger
}

// Option configures a Directory.
type Option func(o *options)

type options struct {
	log        *zap.Logger
	registerer prometheus.Registerer
	fetch      []ref.Option
}

// WithLogger sets the logger of the directory and its fetcher.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithRegisterer records store reads with collectors registered in reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithFetchOptions configures the fetcher resolving references.
func WithFetchOptions(opts ...ref.Option) Option {
	return func(o *options) {
		o.fetch = append(o.fetch, opts...)
	}
}

// Open returns the directory kept in the given storage.
//
// An empty storage is initialized with the directory schema.
func Open(ctx context.Context, store storage.Storage, opts ...Option) (*Directory, error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	docs, err := core.Load(ctx, store)
	if errors.Is(err, storage.ErrNotFound) {
		o.log.Info("initializing empty directory")
		docs, err = core.Open(ctx, store, schema.Default().Source())
	}
	if err != nil {
		return nil, err
	}

	var reads ref.Store = docs
	if o.registerer != nil {
		reads = metrics.Instrument(docs, o.registerer)
	}
	fetchOpts := append([]ref.Option{ref.WithLogger(o.log)}, o.fetch...)
	return &Directory{
		store:   docs,
		fetcher: ref.NewFetcher(reads, fetchOpts...),
		log:     o.log,
	}, nil
}

// Store returns the underlying document store.
func (d *Directory) Store() *core.Store {
	return d.store
}

// Fetcher returns the fetcher used to resolve references.
func (d *Directory) Fetcher() *ref.Fetcher {
	return d.fetcher
}

// Seed writes all documents of the fixture.
func (d *Directory) Seed(ctx context.Context, f fixture.Fixture) error {
	if err := f.Seed(ctx, d.store); err != nil {
		return err
	}
	d.log.Info("seeded directory", zap.Int("documents", f.Len()))
	return nil
}

// Export writes a CAR snapshot of the directory to out.
func (d *Directory) Export(ctx context.Context, out io.Writer) error {
	return d.store.Export(ctx, out)
}

// User returns the user with the given id.
func (d *Directory) User(ctx context.Context, id string) (*model.User, error) {
	return ref.Load(ctx, d.fetcher, model.Users, id)
}

// Association returns the association with the given id.
func (d *Directory) Association(ctx context.Context, id string) (*model.Association, error) {
	return ref.Load(ctx, d.fetcher, model.Associations, id)
}

// Event returns the event with the given id.
func (d *Directory) Event(ctx context.Context, id string) (*model.Event, error) {
	return ref.Load(ctx, d.fetcher, model.Events, id)
}

// SaveUser writes the user.
func (d *Directory) SaveUser(ctx context.Context, u *model.User) error {
	return ref.Save(ctx, d.store, model.Users, u)
}

// SaveAssociation writes the association.
func (d *Directory) SaveAssociation(ctx context.Context, a *model.Association) error {
	return ref.Save(ctx, d.store, model.Associations, a)
}

// SaveEvent writes the event.
func (d *Directory) SaveEvent(ctx context.Context, e *model.Event) error {
	return ref.Save(ctx, d.store, model.Events, e)
}

// Users returns a collection of the users with the given ids.
func (d *Directory) Users(ids ...string) *ref.Collection[*model.User] {
	return ref.NewCollection(model.Users, ids...)
}

// Associations returns a collection of the associations with the given ids.
func (d *Directory) Associations(ids ...string) *ref.Collection[*model.Association] {
	return ref.NewCollection(model.Associations, ids...)
}

// Events returns a collection of the events with the given ids.
func (d *Directory) Events(ids ...string) *ref.Collection[*model.Event] {
	return ref.NewCollection(model.Events, ids...)
}

// AllUsers returns a collection of every stored user.
func (d *Directory) AllUsers(ctx context.Context) (*ref.Collection[*model.User], error) {
	ids, err := d.store.IDs(ctx, model.UsersCollection)
	if err != nil {
		return nil, err
	}
	return d.Users(ids...), nil
}

// AllAssociations returns a collection of every stored association.
func (d *Directory) AllAssociations(ctx context.Context) (*ref.Collection[*model.Association], error) {
	ids, err := d.store.IDs(ctx, model.AssociationsCollection)
	if err != nil {
		return nil, err
	}
	return d.Associations(ids...), nil
}

// AllEvents returns a collection of every stored event.
func (d *Directory) AllEvents(ctx context.Context) (*ref.Collection[*model.Event], error) {
	ids, err := d.store.IDs(ctx, model.EventsCollection)
	if err != nil {
		return nil, err
	}
	return d.Events(ids...), nil
}
