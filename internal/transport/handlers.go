package transport

import (
	"fmt"

	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/ds124wfegd/trainhub/internal/repository"
	"github.com/ds124wfegd/trainhub/internal/service"
	"github.com/gin-gonic/gin"
)

type (
	EventHandler         = CollectionHandler[entity.Event, *entity.Event, entity.EventForm, entity.EventPatch]
	TrainerHandler       = CollectionHandler[entity.Trainer, *entity.Trainer, entity.TrainerForm, entity.TrainerPatch]
	PartnerHandler       = CollectionHandler[entity.Partner, *entity.Partner, entity.PartnerForm, entity.PartnerPatch]
	EventCategoryHandler = CollectionHandler[entity.EventCategory, *entity.EventCategory, entity.EventCategoryForm, entity.EventCategoryPatch]
)

// queryFilter binds the request query into Q and applies filter with it.
func queryFilter[T any, Q any](filter func([]T, Q) []T) func(*gin.Context, []T) ([]T, error) {
	return func(c *gin.Context, items []T) ([]T, error) {
		var q Q
		if err := c.ShouldBindQuery(&q); err != nil {
			return nil, fmt.Errorf("%w: %s", entity.ErrInvalidInput, err.Error())
		}
		return filter(items, q), nil
	}
}

// Events are returned with category, trainer and partner names resolved.
func NewEventHandler(repos *repository.Repositories) *EventHandler {
	return NewCollectionHandler[entity.Event, *entity.Event, entity.EventForm, entity.EventPatch](
		repos.Events, queryFilter(service.FilterEvents),
	).WithResolver(func(events []entity.Event) []entity.Event {
		return service.ResolveEventNames(events, repos.Categories.List(), repos.Trainers.List(), repos.Partners.List())
	})
}

func NewTrainerHandler(repos *repository.Repositories) *TrainerHandler {
	return NewCollectionHandler[entity.Trainer, *entity.Trainer, entity.TrainerForm, entity.TrainerPatch](
		repos.Trainers, queryFilter(service.FilterTrainers),
	)
}

func NewPartnerHandler(repos *repository.Repositories) *PartnerHandler {
	return NewCollectionHandler[entity.Partner, *entity.Partner, entity.PartnerForm, entity.PartnerPatch](
		repos.Partners, queryFilter(service.FilterPartners),
	)
}

func NewEventCategoryHandler(repos *repository.Repositories) *EventCategoryHandler {
	return NewCollectionHandler[entity.EventCategory, *entity.EventCategory, entity.EventCategoryForm, entity.EventCategoryPatch](
		repos.Categories, queryFilter(service.FilterCategories),
	)
}
