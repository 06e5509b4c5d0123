package http

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mikelzubi/mimapa/internal/core/domain"
	"github.com/mikelzubi/mimapa/internal/core/ports"
)

// markerBody is the request body for create and edit.
type markerBody struct {
	Place    string `json:"place"`
	ImageURL string `json:"image_url"`
}

// mapStatus translates a map-loading terminal state to an HTTP status.
func mapStatus(s domain.State) int {
	if s == domain.StateFailed {
		return fiber.StatusInternalServerError
	}
	return fiber.StatusOK
}

// saveStatus translates a save terminal state to an HTTP status.
// created selects 201 over 200 for the happy path.
func saveStatus(s domain.State, created bool) int {
	switch s {
	case domain.StateSaved:
		if created {
			return fiber.StatusCreated
		}
		return fiber.StatusOK
	case domain.StateGeocodeEmpty:
		return fiber.StatusUnprocessableEntity
	case domain.StateGeocodeFailed:
		return fiber.StatusBadGateway
	default: // save_failed
		return fiber.StatusInternalServerError
	}
}

// OwnMapHandler returns the authenticated viewer's own markers.
func OwnMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := requireViewer(c)
		if err != nil {
			return err
		}

		res := deps.Markers.BrowseOwnMap(c.Context(), *id)
		return c.Status(mapStatus(res.State)).JSON(res)
	}
}

// SearchMapHandler returns another owner's markers and records the
// visit as a side effect.
func SearchMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner, err := decodeParam(c, "owner")
		if err != nil {
			return errBadRequest(c, "owner is required")
		}

		res, err := deps.Markers.SearchMap(c.Context(), viewer(c), owner)
		if err != nil {
			return domainError(c, err)
		}
		return c.Status(mapStatus(res.State)).JSON(res)
	}
}

// CreateMarkerHandler geocodes the place and saves a new marker.
func CreateMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := requireViewer(c)
		if err != nil {
			return err
		}

		var body markerBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(body.Place) == "" {
			return errBadRequest(c, "place is required")
		}

		res, err := deps.Markers.Create(c.Context(), *id, body.Place, body.ImageURL)
		if err != nil {
			return domainError(c, err)
		}
		return c.Status(saveStatus(res.State, true)).JSON(res)
	}
}

// ListMarkersHandler lists markers with owner/place filters and
// offset/limit pagination. The unfiltered total goes out in
// X-Total-Count and the pagination envelope.
func ListMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		f := ports.MarkerFilter{
			Owner:  c.Query("owner"),
			Place:  c.Query("place"),
			Offset: offset,
			Limit:  limit,
		}

		markers, total, err := deps.Markers.List(c.Context(), f)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: markers, Pagination: pg})
	}
}

// NearbyMarkersHandler returns markers within a radius of a point.
func NearbyMarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 1000)
		limit := c.QueryInt("limit", 50)

		if lat == 0 && lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 100000 {
			return errBadRequest(c, "radius must be between 1 and 100000 meters")
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		markers, err := deps.Markers.Nearby(c.Context(), lat, lon, radius, limit)
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(markers)
	}
}

// GetMarkerHandler returns one marker, consulting the active slot first.
func GetMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "marker id is required")
		}

		m, err := deps.Markers.View(c.Context(), id)
		if err != nil {
			return domainError(c, err)
		}
		return c.JSON(m)
	}
}

// UpdateMarkerHandler runs the edit workflow: re-geocode when the place
// changed, skip geocoding for image-only changes.
func UpdateMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := requireViewer(c)
		if err != nil {
			return err
		}

		markerID := c.Params("id")
		if markerID == "" {
			return errBadRequest(c, "marker id is required")
		}

		var body markerBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if strings.TrimSpace(body.Place) == "" {
			return errUnprocessable(c, "place is required")
		}

		res, err := deps.Markers.Edit(c.Context(), *id, markerID, body.Place, body.ImageURL)
		if err != nil {
			return domainError(c, err)
		}
		return c.Status(saveStatus(res.State, false)).JSON(res)
	}
}

// DeleteMarkerHandler deletes a marker. Repeating the delete is a
// success, so clients can retry freely.
func DeleteMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := requireViewer(c)
		if err != nil {
			return err
		}

		markerID := c.Params("id")
		if markerID == "" {
			return errBadRequest(c, "marker id is required")
		}

		if err := deps.Markers.Delete(c.Context(), *id, markerID); err != nil {
			return domainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ClearActiveMarkerHandler empties the cross-screen marker slot.
func ClearActiveMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Markers.ClearActive(c.Context())
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListVisitsHandler returns the viewer's received visits, oldest first.
// Only the owner may read their own visit log.
func ListVisitsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := requireViewer(c)
		if err != nil {
			return err
		}

		visited := c.Query("visited", id.Email)
		if visited != id.Email {
			return errForbidden(c, "you may only read your own visit log")
		}

		visits, err := deps.Visits.ListByVisited(c.Context(), visited)
		if err != nil {
			return domainError(c, err)
		}

		c.Set("X-Total-Count", strconv.Itoa(len(visits)))
		return c.JSON(fiber.Map{"data": visits, "count": len(visits)})
	}
}

// UploadMediaHandler accepts one multipart image and returns its URL.
func UploadMediaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := requireViewer(c); err != nil {
			return err
		}
		if deps.Media == nil {
			return errInternal(c, "media backend not available")
		}

		fh, err := c.FormFile("image")
		if err != nil {
			return errBadRequest(c, "image file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return errInternal(c, err.Error())
		}
		defer f.Close()

		url, err := deps.Media.Upload(c.Context(), fh.Filename, f)
		if err != nil {
			var be *domain.BackendError
			if errors.As(err, &be) {
				return newError(c, fiber.StatusBadGateway, "media_backend", be.Message)
			}
			return errInternal(c, err.Error())
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"result": fiber.Map{"url": url},
		})
	}
}

// decodeParam returns a non-empty, URL-decoded path parameter. Owner
// emails arrive percent-encoded.
func decodeParam(c *fiber.Ctx, name string) (string, error) {
	raw := c.Params(name)
	if raw == "" {
		return "", domain.ErrInvalidInput
	}
	val, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(val) == "" {
		return "", domain.ErrInvalidInput
	}
	return val, nil
}
