package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/apperr"
	"task-tracker/internal/conversion"
)

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the error envelope for err. Domain errors are expected
// outcomes and only logged at debug; everything else is logged as a failure
// with the request context and answered with a generic message.
func (h *ProjectHandler) respondError(c *fiber.Ctx, err error, params logrus.Fields) error {
	kind := apperr.KindOf(err)
	entry := h.log.WithFields(params).WithFields(requestFields(c))

	if kind == apperr.KindInfrastructure {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithField("kind", kind).Debug(apperr.PublicMessage(err))
	}

	return c.Status(statusFor(kind)).JSON(conversion.ErrorBody{
		Error: conversion.ErrorDetail{
			Kind:    string(kind),
			Message: apperr.PublicMessage(err),
		},
	})
}

func requestFields(c *fiber.Ctx) logrus.Fields {
	route := utils.CopyString(c.Path())
	if r := c.Route(); r != nil && r.Path != "" {
		route = r.Path
	}
	return logrus.Fields{
		"method":     c.Method(),
		"route":      route,
		"request_id": utils.CopyString(c.GetRespHeader(fiber.HeaderXRequestID)),
	}
}

// ErrorHandler answers errors that escape the handlers (unknown routes,
// method mismatches, recovered panics) with the same envelope.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		kind := string(apperr.KindInfrastructure)
		message := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			switch {
			case code == fiber.StatusNotFound:
				kind, message = string(apperr.KindNotFound), "route not found"
			case code == fiber.StatusMethodNotAllowed:
				kind, message = "method_not_allowed", "method not allowed"
			case code < fiber.StatusInternalServerError:
				kind, message = string(apperr.KindValidation), fe.Message
			}
		}

		if code >= fiber.StatusInternalServerError {
			log.WithFields(requestFields(c)).WithError(err).Error("unhandled error")
		}
		return c.Status(code).JSON(conversion.ErrorBody{
			Error: conversion.ErrorDetail{Kind: kind, Message: message},
		})
	}
}
