package transport

import (
	"io"
	"net/http"

	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/ds124wfegd/trainhub/internal/repository"
	"github.com/gin-gonic/gin"
)

// CollectionHandler serves CRUD, list and watch endpoints of one collection.
// F and P are the create form and the update patch of the record type.
type CollectionHandler[T any, PT interface {
	*T
	entity.Document
}, F entity.Form[T], P entity.Patch[T]] struct {
	repo   *repository.Mirror[T, PT]
	filter func(c *gin.Context, items []T) ([]T, error)
	// resolve fills derived fields, may be nil
	resolve func(items []T) []T
}

func NewCollectionHandler[T any, PT interface {
	*T
	entity.Document
}, F entity.Form[T], P entity.Patch[T]](repo *repository.Mirror[T, PT], filter func(c *gin.Context, items []T) ([]T, error)) *CollectionHandler[T, PT, F, P] {
	return &CollectionHandler[T, PT, F, P]{repo: repo, filter: filter}
}

// WithResolver sets the function that fills derived fields before records
// are returned.
func (h *CollectionHandler[T, PT, F, P]) WithResolver(resolve func(items []T) []T) *CollectionHandler[T, PT, F, P] {
	h.resolve = resolve
	return h
}

func (h *CollectionHandler[T, PT, F, P]) view(c *gin.Context, items []T) ([]T, error) {
	items, err := h.filter(c, items)
	if err != nil {
		return nil, err
	}
	if h.resolve != nil {
		items = h.resolve(items)
	}
	return items, nil
}

func (h *CollectionHandler[T, PT, F, P]) register(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.GET("/watch", h.Watch)
	group.GET("/:id", h.Get)
	group.POST("", h.Create)
	group.PATCH("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

func (h *CollectionHandler[T, PT, F, P]) List(c *gin.Context) {
	if h.repo.Store() == nil {
		writeError(c, entity.ErrStoreNotInitialized)
		return
	}
	if err := h.repo.Err(); err != nil {
		writeError(c, err)
		return
	}

	items, err := h.view(c, h.repo.List())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":   items,
		"loading": h.repo.Loading(),
	})
}

func (h *CollectionHandler[T, PT, F, P]) Get(c *gin.Context) {
	item, ok := h.repo.GetByID(c.Param("id"))
	if !ok {
		writeError(c, entity.ErrNotFound)
		return
	}

	if h.resolve != nil {
		item = h.resolve([]T{item})[0]
	}
	c.JSON(http.StatusOK, item)
}

func (h *CollectionHandler[T, PT, F, P]) Create(c *gin.Context) {
	var form F
	if err := decodeJSON(c, &form); err != nil {
		writeError(c, err)
		return
	}

	id, err := h.repo.Add(c.Request.Context(), form)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *CollectionHandler[T, PT, F, P]) Update(c *gin.Context) {
	var patch P
	if err := decodeJSON(c, &patch); err != nil {
		writeError(c, err)
		return
	}

	if err := h.repo.Update(c.Request.Context(), c.Param("id"), patch); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "updated", Data: gin.H{"id": c.Param("id")}})
}

// Delete removes the record only when the request carries confirm=true.
func (h *CollectionHandler[T, PT, F, P]) Delete(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusPreconditionRequired, gin.H{"error": "deletion must be confirmed with confirm=true"})
		return
	}

	if err := h.repo.Remove(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Watch streams the filtered list as server-sent events, one "snapshot"
// event per change. The subscription ends with the client connection.
func (h *CollectionHandler[T, PT, F, P]) Watch(c *gin.Context) {
	store := h.repo.Store()
	if store == nil {
		writeError(c, entity.ErrStoreNotInitialized)
		return
	}

	ctx := c.Request.Context()
	sub, err := store.Subscribe(ctx, h.repo.Path())
	if err != nil {
		writeError(c, err)
		return
	}
	defer sub.Close()

	snapshots, errs := sub.Snapshots(), sub.Errors()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case docs, ok := <-snapshots:
			if !ok {
				return false
			}
			items, err := h.view(c, repository.Decode[T, PT](h.repo.Path(), docs))
			if err != nil {
				c.SSEvent("error", gin.H{"error": err.Error()})
				return false
			}
			c.SSEvent("snapshot", items)
			return true
		case err, ok := <-errs:
			if ok {
				c.SSEvent("error", gin.H{"error": err.Error()})
			}
			return false
		}
	})
}
