package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"motifapi/internal/service"
)

const datasetNotFound = "dataset not found"

// pageParams reads limit and offset query parameters, or returns false after writing a 400.
func pageParams(c *fiber.Ctx) (int, int, bool) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		return 0, 0, false
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		return 0, 0, false
	}
	return limit, offset, true
}

// idParam returns the :id path parameter, or false after writing a 400 if it is not a UUID.
func idParam(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return "", false
	}
	return id, true
}

// ListDatasets lists datasets with limit & offset.
//
// @Summary List datasets
// @Tags datasets
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} service.DatasetListResult
// @Failure 400 {object} errorPayload
// @Router /datasets [get]
func ListDatasets(svc service.DatasetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := pageParams(c)
		if !ok {
			return nil
		}
		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err, datasetNotFound)
		}
		return c.JSON(res)
	}
}

// UploadDataset accepts a multipart CSV under the field "file".
//
// @Summary Upload a dataset
// @Tags datasets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param name formData string false "display name"
// @Param layout formData string false "columns or rows" default(columns)
// @Success 201 {object} model.Dataset
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /datasets [post]
func UploadDataset(svc service.DatasetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ds, err := svc.Upload(c.UserContext(), f, service.UploadInput{
			Name:        c.FormValue("name"),
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Layout:      c.FormValue("layout"),
		})
		if err != nil {
			return writeServiceError(c, err, datasetNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(ds)
	}
}

// GetDataset returns dataset metadata by ID.
//
// @Summary Get a dataset
// @Tags datasets
// @Produce json
// @Param id path string true "dataset id"
// @Success 200 {object} model.Dataset
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /datasets/{id} [get]
func GetDataset(svc service.DatasetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		ds, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, datasetNotFound)
		}
		return c.JSON(ds)
	}
}

// DeleteDataset removes a dataset together with its discoveries.
//
// @Summary Delete a dataset
// @Tags datasets
// @Param id path string true "dataset id"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /datasets/{id} [delete]
func DeleteDataset(svc service.DatasetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err, datasetNotFound)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDataset returns a presigned URL for the raw CSV.
//
// @Summary Presigned download URL
// @Tags datasets
// @Produce json
// @Param id path string true "dataset id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errorPayload
// @Router /datasets/{id}/download [get]
func DownloadDataset(svc service.DatasetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := idParam(c)
		if !ok {
			return nil
		}
		u, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, datasetNotFound)
		}
		return c.JSON(fiber.Map{"url": u})
	}
}
