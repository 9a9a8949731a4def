package http

import (
	"github.com/gofiber/fiber/v2"

	appdraft "github.com/jhoicas/invoice-builder/internal/application/draft"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Session   *appdraft.Session
	LogoCodec appdraft.LogoCodec
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	draft := api.Group("/draft")
	h := NewDraftHandler(deps.Session, deps.LogoCodec)
	draft.Get("/", h.Get)
	draft.Delete("/", h.Clear)
	draft.Put("/fields/:field", h.SetField)
	draft.Post("/items", h.AddItem)
	draft.Patch("/items/:id", h.UpdateItem)
	draft.Delete("/items/:id", h.RemoveItem)
	draft.Put("/logo", h.SetLogo)
	draft.Delete("/logo", h.RemoveLogo)
	draft.Get("/export", h.Export)
}
