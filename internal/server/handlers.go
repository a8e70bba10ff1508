package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/shouni/visionary-gallery/pkg/domain"
	"github.com/shouni/visionary-gallery/pkg/imgutil"
	"github.com/shouni/visionary-gallery/pkg/service"
	"github.com/shouni/visionary-gallery/pkg/transfer"
)

func (s *Server) listCategories(c echo.Context) error {
	categories := lo.Map(domain.Categories, func(cat domain.Category, _ int) CategoryResponse {
		return CategoryResponse{ID: cat, Label: cat.Label()}
	})
	return success(c, http.StatusOK, categories)
}

func (s *Server) listItems(c echo.Context) error {
	category := domain.CategoryAll
	if raw := c.QueryParam("category"); raw != "" {
		parsed, ok := domain.ParseCategory(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, ErrorResponseWithDetails("invalid_category", raw))
		}
		category = parsed
	}
	return success(c, http.StatusOK, s.svc.List(category))
}

func (s *Server) getItem(c echo.Context) error {
	item, err := s.svc.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrItemNotFound)
	}
	return success(c, http.StatusOK, item)
}

func (s *Server) generate(c echo.Context) error {
	const op = "server.Server.generate"
	ctx := c.Request().Context()

	var req domain.GenerationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrInvalidRequestFormat)
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if err := c.Validate(&req); err != nil {
		s.metrics.Generations.WithLabelValues("invalid").Inc()
		return validationFailed(c, service.AsValidationError(err))
	}

	item, err := s.svc.Generate(ctx, req)
	var ve *domain.ValidationError
	var ge *domain.GenerationError
	switch {
	case err == nil:
		s.metrics.Generations.WithLabelValues("success").Inc()
		return success(c, http.StatusCreated, item)
	case errors.As(err, &ve):
		s.metrics.Generations.WithLabelValues("invalid").Inc()
		return validationFailed(c, err)
	case errors.Is(err, domain.ErrGenerationInProgress):
		s.metrics.Generations.WithLabelValues("busy").Inc()
		return c.JSON(http.StatusConflict, ErrGenerationBusy)
	case errors.As(err, &ge):
		s.metrics.Generations.WithLabelValues("failed").Inc()
		return c.JSON(http.StatusBadGateway, ErrGenerationFailed)
	default:
		s.log.ErrorContext(ctx, "画像生成の処理に失敗しました", "op", op, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponseWithDetails("internal_error", err.Error()))
	}
}

func (s *Server) upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrInvalidRequestFormat)
	}
	if fh.Size > s.maxUpload {
		s.metrics.Uploads.WithLabelValues("invalid").Inc()
		return validationFailed(c, &domain.ValidationError{Field: "file", Message: domain.MsgUploadTooLarge})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrInvalidRequestFormat)
	}
	defer f.Close()

	item, err := s.svc.UploadReader(c.Request().Context(), f, fh.Size)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			s.metrics.Uploads.WithLabelValues("invalid").Inc()
			return validationFailed(c, err)
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponseWithDetails("internal_error", err.Error()))
	}

	s.metrics.Uploads.WithLabelValues("success").Inc()
	return success(c, http.StatusCreated, item)
}

func (s *Server) deleteItem(c echo.Context) error {
	ctx := service.WithConfirmed(c.Request().Context(), confirmed(c))
	deleted, err := s.svc.Delete(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponseWithDetails("internal_error", err.Error()))
	}
	if !confirmed(c) {
		return c.JSON(http.StatusPreconditionRequired, ErrConfirmationRequired)
	}
	return success(c, http.StatusOK, DeleteResponse{Deleted: deleted})
}

func (s *Server) reset(c echo.Context) error {
	ctx := service.WithConfirmed(c.Request().Context(), confirmed(c))
	done, err := s.svc.Reset(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponseWithDetails("internal_error", err.Error()))
	}
	if !done {
		return c.JSON(http.StatusPreconditionRequired, ErrConfirmationRequired)
	}
	return success(c, http.StatusOK, ResetResponse{Reset: true})
}

// download は data URI の作品をファイルとして返し、外部 URL の作品はリダイレクトします。
func (s *Server) download(c echo.Context) error {
	item, err := s.svc.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrItemNotFound)
	}
	if !imgutil.IsDataURI(item.URL) {
		return c.Redirect(http.StatusFound, item.URL)
	}

	mimeType, data, err := imgutil.DecodeDataURI(item.URL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponseWithDetails("corrupt_image", err.Error()))
	}
	name := transfer.FileName(item.Category, item.Created(), mimeType)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, mimeType, data)
}

func confirmed(c echo.Context) bool {
	ok, _ := strconv.ParseBool(c.QueryParam("confirm"))
	return ok
}

func validationFailed(c echo.Context, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, ErrorResponseWithDetails("validation_failed", ve.Error()))
	}
	return c.JSON(http.StatusBadRequest, ErrorResponseWithDetails("validation_failed", err.Error()))
}
