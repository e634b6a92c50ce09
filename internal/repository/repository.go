package repository

import (
	"context"

	"github.com/ds124wfegd/trainhub/internal/database/realtime"
	"github.com/ds124wfegd/trainhub/internal/entity"
	"golang.org/x/sync/errgroup"
)

type (
	EventRepository         = Mirror[entity.Event, *entity.Event]
	TrainerRepository       = Mirror[entity.Trainer, *entity.Trainer]
	PartnerRepository       = Mirror[entity.Partner, *entity.Partner]
	EventCategoryRepository = Mirror[entity.EventCategory, *entity.EventCategory]
)

func NewEventRepository(store realtime.Store) *EventRepository {
	return NewMirror[entity.Event, *entity.Event](store, realtime.PathEvents)
}

func NewTrainerRepository(store realtime.Store) *TrainerRepository {
	return NewMirror[entity.Trainer, *entity.Trainer](store, realtime.PathTrainers)
}

func NewPartnerRepository(store realtime.Store) *PartnerRepository {
	return NewMirror[entity.Partner, *entity.Partner](store, realtime.PathPartners)
}

func NewEventCategoryRepository(store realtime.Store) *EventCategoryRepository {
	return NewMirror[entity.EventCategory, *entity.EventCategory](store, realtime.PathEventCategories)
}

// Repositories groups the four collection mirrors.
type Repositories struct {
	Events     *EventRepository
	Trainers   *TrainerRepository
	Partners   *PartnerRepository
	Categories *EventCategoryRepository
}

func NewRepositories(store realtime.Store) *Repositories {
	return &Repositories{
		Events:     NewEventRepository(store),
		Trainers:   NewTrainerRepository(store),
		Partners:   NewPartnerRepository(store),
		Categories: NewEventCategoryRepository(store),
	}
}

// Start subscribes all mirrors concurrently and returns the first failure.
func (r *Repositories) Start(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return r.Events.Start(ctx) })
	g.Go(func() error { return r.Trainers.Start(ctx) })
	g.Go(func() error { return r.Partners.Start(ctx) })
	g.Go(func() error { return r.Categories.Start(ctx) })
	return g.Wait()
}

func (r *Repositories) Stop() {
	r.Events.Stop()
	r.Trainers.Stop()
	r.Partners.Stop()
	r.Categories.Stop()
}

// OnChange registers fn on every mirror.
func (r *Repositories) OnChange(fn func()) {
	r.Events.OnChange(fn)
	r.Trainers.OnChange(fn)
	r.Partners.OnChange(fn)
	r.Categories.OnChange(fn)
}
