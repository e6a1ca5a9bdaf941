package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/lecture"
)

var (
	errNoAudioFile     = "no audio file uploaded"
	errBadAudioType    = "unsupported audio type"
	errAudioFileTooBig = "audio file too large"
	audioFormFileField = "audio"
)

type lectureApi struct {
	svc     lecture.ServiceInterface
	storage core.FileStorage
}

func registerLectureAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc lecture.ServiceInterface, storage core.FileStorage) {
	api := lectureApi{svc: svc, storage: storage}

	// no role gates here: authentication is the only requirement, and
	// ownership checks happen in the store query itself, so a non-owner
	// gets the same 404 as a missing record
	lg := g.Group("/lecture-summaries", jwt)
	lg.POST("/upload", api.upload)
	lg.GET("/teacher", api.queryOwn)
	lg.GET("/student", api.queryPublished)
	lg.PATCH("/:id/publish", api.publish)
	lg.DELETE("/:id", api.destroy)
}

// Handlers

// upload stores the posted recording and records it as a pending summary
// owned by the caller.
func (api *lectureApi) upload(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	fh, err := ctx.FormFile(audioFormFileField)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: audioFormFileField, Error: errNoAudioFile})
	}
	if fh.Size > core.Conf.Upload.MaxSize {
		return core.NewValidationError(nil, core.FieldError{Field: audioFormFileField, Error: errAudioFileTooBig})
	}
	contentType := fh.Header.Get(echo.HeaderContentType)
	if !api.isAudioTypeAllowed(contentType) {
		return core.NewValidationError(nil, core.FieldError{Field: audioFormFileField, Error: errBadAudioType})
	}

	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = src.Close() }()

	ref, err := api.storage.Save(ctx.Request().Context(), fh.Filename, contentType, src)
	if err != nil {
		return errors.Wrap(err, "saving uploaded file")
	}

	data := lecture.NewSummary{
		Title:     ctx.FormValue("title"),
		Subject:   ctx.FormValue("subject"),
		AudioFile: lecture.AudioFile{URL: ref.URL, Filename: ref.Filename},
	}
	sum, err := api.svc.Ingest(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "ingesting summary")
	}
	return ctx.JSON(http.StatusCreated, sum)
}

func (api *lectureApi) queryOwn(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sums, err := api.svc.QueryForTeacher(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying teacher summaries")
	}
	if sums == nil {
		sums = []lecture.Summary{}
	}
	return ctx.JSON(http.StatusOK, sums)
}

func (api *lectureApi) queryPublished(ctx echo.Context) error {
	sums, err := api.svc.QueryPublished(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying published summaries")
	}
	if sums == nil {
		sums = []lecture.Summary{}
	}
	return ctx.JSON(http.StatusOK, sums)
}

func (api *lectureApi) publish(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sum, err := api.svc.Publish(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == lecture.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "publishing summary")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *lectureApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		if errors.Cause(err) == lecture.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting summary")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Lecture summary deleted successfully."})
}

func (api *lectureApi) isAudioTypeAllowed(contentType string) bool {
	for _, allowed := range core.Conf.Upload.AllowedAudioTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
