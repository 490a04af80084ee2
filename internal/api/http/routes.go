package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/pupwalk/pupwalk/internal/community"
	"github.com/pupwalk/pupwalk/internal/realtime"
	"github.com/pupwalk/pupwalk/internal/store"
	"github.com/pupwalk/pupwalk/internal/walk"
	"github.com/pupwalk/pupwalk/internal/weather"
)

var validate = validator.New()

// Deps bundles the services the HTTP layer exposes.
type Deps struct {
	Weather   *weather.Service
	Community *community.Service
	Snapshots *store.SnapshotStore
	Notifier  realtime.Notifier
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		req, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snap, err := deps.Weather.Snapshot(c.Context(), req.Location, req.date)
		if err != nil {
			return mapWeatherErr(err)
		}
		return c.JSON(snap)
	})

	v1.Get("/walks", func(c *fiber.Ctx) error {
		req, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snap, err := deps.Weather.Snapshot(c.Context(), req.Location, req.date)
		if err != nil {
			return mapWeatherErr(err)
		}

		recs, err := walk.ScoreSlots(snap)
		if err != nil {
			return mapWeatherErr(err)
		}

		return c.JSON(fiber.Map{
			"snapshot":        snap,
			"recommendations": recs,
		})
	})

	v1.Get("/walks/history", func(c *fiber.Ctx) error {
		location := c.Query("location")
		if location == "" {
			return fiber.NewError(fiber.StatusBadRequest, "location query parameter is required")
		}

		history, err := deps.Snapshots.History(location)
		if err != nil {
			if errors.Is(err, store.ErrNoSnapshots) {
				return fiber.NewError(fiber.StatusNotFound, "no warmed snapshots for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load snapshot history")
		}

		return c.JSON(fiber.Map{
			"location":  location,
			"snapshots": history,
		})
	})

	registerCommentRoutes(v1, deps)
	registerLocationRoutes(v1, deps)
	registerDogRoutes(v1, deps)
}

func registerCommentRoutes(v1 fiber.Router, deps Deps) {
	v1.Get("/comments", func(c *fiber.Ctx) error {
		zip := c.Query("zip")
		comments, err := deps.Community.ListComments(c.Context(), zip)
		if err != nil {
			return mapCommunityErr(err)
		}
		return c.JSON(fiber.Map{"comments": comments})
	})

	v1.Post("/comments", func(c *fiber.Ctx) error {
		userID, err := requireUser(c)
		if err != nil {
			return err
		}

		var body commentBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		comment, err := deps.Community.PostComment(c.Context(), userID, body.ZipCode, body.Comment)
		if err != nil {
			return mapCommunityErr(err)
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	})

	v1.Get("/comments/stream", func(c *fiber.Ctx) error {
		zip := c.Query("zip")
		if zip == "" {
			return fiber.NewError(fiber.StatusBadRequest, "zip query parameter is required")
		}

		changes, cancel, err := deps.Notifier.Subscribe(context.Background(), realtime.CollectionComments)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to subscribe to changes")
		}

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cancel()

			keepAlive := time.NewTicker(15 * time.Second)
			defer keepAlive.Stop()

			for {
				select {
				case change, ok := <-changes:
					if !ok {
						return
					}
					if change.ZipCode != "" && change.ZipCode != zip {
						continue
					}
					payload, err := json.Marshal(change)
					if err != nil {
						continue
					}
					if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				case <-keepAlive.C:
					if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
						return
					}
					if err := w.Flush(); err != nil {
						return
					}
				}
			}
		}))
		return nil
	})
}

func registerLocationRoutes(v1 fiber.Router, deps Deps) {
	v1.Get("/locations", func(c *fiber.Ctx) error {
		userID, err := requireUser(c)
		if err != nil {
			return err
		}

		locs, err := deps.Community.ListLocations(c.Context(), userID)
		if err != nil {
			return mapCommunityErr(err)
		}
		return c.JSON(fiber.Map{"locations": locs})
	})

	v1.Post("/locations", func(c *fiber.Ctx) error {
		userID, err := requireUser(c)
		if err != nil {
			return err
		}

		var body locationBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc, err := deps.Community.SaveLocation(c.Context(), userID, body.Location)
		if err != nil {
			return mapCommunityErr(err)
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	})

	v1.Delete("/locations/:id", func(c *fiber.Ctx) error {
		userID, err := requireUser(c)
		if err != nil {
			return err
		}

		if err := deps.Community.DeleteLocation(c.Context(), userID, c.Params("id")); err != nil {
			return mapCommunityErr(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Put("/locations/:id/home", func(c *fiber.Ctx) error {
		userID, err := requireUser(c)
		if err != nil {
			return err
		}

		if err := deps.Community.SetHome(c.Context(), userID, c.Params("id")); err != nil {
			return mapCommunityErr(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func registerDogRoutes(v1 fiber.Router, deps Deps) {
	v1.Get("/dogs", func(c *fiber.Ctx) error {
		userID, err := requireUser(c)
		if err != nil {
			return err
		}

		dogs, err := deps.Community.ListDogs(c.Context(), userID)
		if err != nil {
			return mapCommunityErr(err)
		}
		return c.JSON(fiber.Map{"dogs": dogs})
	})

	v1.Post("/dogs", func(c *fiber.Ctx) error {
		userID, err := requireUser(c)
		if err != nil {
			return err
		}

		var body dogBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		dog, err := deps.Community.AddDog(c.Context(), userID, body.Name, body.ZipCode)
		if err != nil {
			return mapCommunityErr(err)
		}
		return c.Status(fiber.StatusCreated).JSON(dog)
	})

	v1.Delete("/dogs/:id", func(c *fiber.Ctx) error {
		userID, err := requireUser(c)
		if err != nil {
			return err
		}

		if err := deps.Community.DeleteDog(c.Context(), userID, c.Params("id")); err != nil {
			return mapCommunityErr(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// weatherQuery holds query parameters for the weather and walks endpoints.
type weatherQuery struct {
	Location string `validate:"required"`
	Date     string `validate:"omitempty,datetime=2006-01-02"`

	date time.Time
}

func parseWeatherQuery(c *fiber.Ctx) (weatherQuery, error) {
	q := weatherQuery{
		Location: c.Query("location"),
		Date:     c.Query("date"),
	}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	if q.Date != "" {
		ts, err := time.Parse("2006-01-02", q.Date)
		if err != nil {
			return q, errors.New("invalid date; use YYYY-MM-DD")
		}
		q.date = ts
	}
	return q, nil
}

type commentBody struct {
	ZipCode string `json:"zipCode" validate:"required"`
	Comment string `json:"comment" validate:"required,max=500"`
}

type locationBody struct {
	Location string `json:"location" validate:"required,max=100"`
}

type dogBody struct {
	Name    string `json:"name" validate:"required,max=50"`
	ZipCode string `json:"zipCode" validate:"omitempty,max=10"`
}

// requireUser reads the authenticated user id propagated by the auth layer.
func requireUser(c *fiber.Ctx) (string, error) {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "X-User-ID header is required")
	}
	return userID, nil
}

func mapWeatherErr(err error) error {
	switch {
	case errors.Is(err, weather.ErrInvalidLocation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrInsufficientData):
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	case errors.Is(err, weather.ErrFetchFailed):
		return fiber.NewError(fiber.StatusBadGateway, "Unable to fetch weather data. Please check your location and try again.")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}

func mapCommunityErr(err error) error {
	switch {
	case errors.Is(err, community.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, community.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "community operation failed")
	}
}
