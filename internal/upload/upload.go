// Package upload stores the image sent with a multipart cat creation and
// exposes the values it resolves to the create handler.
package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"catapi/internal/geo"
)

// FieldName is the multipart field carrying the image.
const FieldName = "cat"

const contextKey = "upload"

// Result is what the middleware resolved for the current request.
type Result struct {
	Filename string
	Location *geo.Location
}

// Config controls where files land and which coordinates are reported for
// them.
type Config struct {
	Dir      string
	Location geo.Point
	Logger   *zap.Logger
}

// Middleware saves the FieldName file of multipart requests under cfg.Dir
// with a generated name. Requests without a file pass through untouched.
func Middleware(cfg Config) echo.MiddlewareFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ct := c.Request().Header.Get(echo.HeaderContentType)
			if !strings.HasPrefix(ct, echo.MIMEMultipartForm) {
				return next(c)
			}

			fh, err := c.FormFile(FieldName)
			if errors.Is(err, http.ErrMissingFile) {
				return next(c)
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart body")
			}

			name, err := save(cfg.Dir, fh.Filename, func() (io.ReadCloser, error) { return fh.Open() })
			if err != nil {
				return fmt.Errorf("save upload: %w", err)
			}
			logger.Debug("upload stored", zap.String("filename", name), zap.Int64("size", fh.Size))

			c.Set(contextKey, Result{Filename: name, Location: geo.NewLocation(cfg.Location)})
			if err := next(c); err != nil {
				if rmErr := os.Remove(filepath.Join(cfg.Dir, name)); rmErr != nil {
					logger.Warn("remove rejected upload", zap.String("filename", name), zap.Error(rmErr))
				}
				return err
			}
			return nil
		}
	}
}

// From returns the upload resolved for c, or the zero Result.
func From(c echo.Context) Result {
	r, _ := c.Get(contextKey).(Result)
	return r
}

func save(dir, original string, open func() (io.ReadCloser, error)) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	src, err := open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(original))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return name, dst.Close()
}
