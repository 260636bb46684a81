package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"motifapi/internal/discovery"
	"motifapi/internal/service"
)

const discoveryNotFound = "discovery not found"

// CreateDiscovery queues a discovery run on a dataset.
//
// @Summary Start a discovery
// @Tags discoveries
// @Accept json
// @Produce json
// @Param id path string true "dataset id"
// @Param params body discovery.Params true "discovery parameters"
// @Success 202 {object} model.Discovery
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /datasets/{id}/discoveries [post]
func CreateDiscovery(svc service.DiscoveryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		var p discovery.Params
		if err := c.BodyParser(&p); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
		}
		d, err := svc.Create(c.UserContext(), id, p)
		if err != nil {
			return writeServiceError(c, err, datasetNotFound)
		}
		c.Location("/discoveries/" + d.ID)
		return c.Status(fiber.StatusAccepted).JSON(d)
	}
}

// ListDiscoveries lists the runs on a dataset, newest first.
//
// @Summary List discoveries of a dataset
// @Tags discoveries
// @Produce json
// @Param id path string true "dataset id"
// @Param limit query int false "page size" default(10)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} service.DiscoveryListResult
// @Failure 404 {object} errorPayload
// @Router /datasets/{id}/discoveries [get]
func ListDiscoveries(svc service.DiscoveryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		limit, offset, ok := pageParams(c)
		if !ok {
			return nil
		}
		res, err := svc.ListByDataset(c.UserContext(), id, limit, offset)
		if err != nil {
			return writeServiceError(c, err, datasetNotFound)
		}
		return c.JSON(res)
	}
}

// GetDiscovery returns the status of a run.
//
// @Summary Get a discovery
// @Tags discoveries
// @Produce json
// @Param id path string true "discovery id"
// @Success 200 {object} model.Discovery
// @Failure 404 {object} errorPayload
// @Router /discoveries/{id} [get]
func GetDiscovery(svc service.DiscoveryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		d, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, discoveryNotFound)
		}
		return c.JSON(d)
	}
}

// GetDiscoveryResult streams the result document of a succeeded run.
//
// @Summary Get a discovery result
// @Tags discoveries
// @Produce json
// @Param id path string true "discovery id"
// @Success 200 {object} discovery.Result
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /discoveries/{id}/result [get]
func GetDiscoveryResult(svc service.DiscoveryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		rc, info, err := svc.Result(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, discoveryNotFound)
		}
		defer rc.Close()

		c.Type("json")
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, info.ETag)
		}
		body, err := io.ReadAll(rc)
		if err != nil {
			return writeServiceError(c, err, discoveryNotFound)
		}
		return c.Send(body)
	}
}
