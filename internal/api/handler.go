package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
	"github.com/insightdelivered/card-statement-parser/internal/writer"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// msgUnreadable is shown when the document yields no text at all.
const msgUnreadable = "Failed to parse PDF. Please ensure the file is a valid credit card statement."

// ParseResponse is the JSON response from the /api/parse endpoint.
type ParseResponse struct {
	Success   bool                    `json:"success"`
	Error     string                  `json:"error,omitempty"`
	RequestID string                  `json:"requestId,omitempty"`
	Statement *models.ParsedStatement `json:"statement,omitempty"`
	Summary   *models.Summary         `json:"summary,omitempty"`
	CSV       string                  `json:"csv,omitempty"`
	Cached    bool                    `json:"cached,omitempty"`
}

// parseRequest is the JSON body accepted instead of an upload.
type parseRequest struct {
	Text   string `json:"text" form:"text"`
	Format string `json:"format" form:"format"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Decoder *extractor.Decoder
	Cache   *cache.Cache
	Limiter *rate.Limiter
	Log     *slog.Logger
}

// NewApp builds a fiber app with middleware and routes registered.
func NewApp(h *Handler, bodyLimit int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "card-statement-parser",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          h.handleError,
	})
	app.Use(h.requestID, recover.New(), cors.New())
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/parse", h.rateLimit, h.HandleParse)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"version":  Version,
		"engine":   "fiber",
		"fields":   parser.FieldNames(),
		"maxPages": h.Decoder.MaxPages(),
	})
}

// HandleParse accepts a PDF upload in form field "file", or already
// extracted text in "text" (form or JSON), and returns the parsed fields.
// A statement with few or no detected fields is still a 200.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	var req parseRequest
	if c.Is("json") {
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid JSON body: %v", err))
		}
	} else {
		req.Text = c.FormValue("text")
		req.Format = c.FormValue("format")
	}
	if req.Format == "" {
		req.Format = c.Query("format")
	}

	text := req.Text
	if text == "" {
		file, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "No statement provided. Upload form field 'file' or send 'text'.")
		}
		if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
			return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
		}

		f, err := file.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "Failed to read uploaded file.")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "Failed to read uploaded file.")
		}

		text, err = h.decode(c, data)
		if err != nil {
			h.logger(c).Warn("statement decoding failed", "file", file.Filename, "size", file.Size, "error", err)
			return writeError(c, fiber.StatusUnprocessableEntity, msgUnreadable)
		}
	}

	key := "stmt:" + digest([]byte(text))
	st, cached := h.lookup(key)
	if !cached {
		st = parser.Parse(text)
		h.store(key, st)
	}

	summary := models.Summarize(st)
	resp := ParseResponse{
		Success:   true,
		RequestID: requestIDFrom(c),
		Statement: st,
		Summary:   &summary,
		Cached:    cached,
	}

	if strings.EqualFold(req.Format, "csv") {
		var buf bytes.Buffer
		w := &writer.CSVWriter{IncludeHeader: true}
		if err := w.Write(&buf, st); err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
		}
		resp.CSV = buf.String()
	}

	h.logger(c).Info("statement parsed",
		"detected", summary.Detected,
		"transactions", summary.TransactionCount,
		"cached", cached,
	)
	return c.JSON(resp)
}

// decode turns an uploaded document into text, reusing the text of an
// identical upload when it is still cached.
func (h *Handler) decode(c *fiber.Ctx, data []byte) (string, error) {
	key := "pdf:" + digest(data)
	if h.Cache != nil {
		if v, ok := h.Cache.Get(key); ok {
			return v.(string), nil
		}
	}

	text, err := h.Decoder.Decode(c.UserContext(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	if h.Cache != nil {
		h.Cache.SetDefault(key, text)
	}
	return text, nil
}

func (h *Handler) lookup(key string) (*models.ParsedStatement, bool) {
	if h.Cache == nil {
		return nil, false
	}
	v, ok := h.Cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*models.ParsedStatement), true
}

func (h *Handler) store(key string, st *models.ParsedStatement) {
	if h.Cache != nil {
		h.Cache.SetDefault(key, st)
	}
}

const requestIDKey = "requestID"

// requestID tags the request with an id and logs it once it completes.
func (h *Handler) requestID(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals(requestIDKey, id)
	c.Set(fiber.HeaderXRequestID, id)

	start := time.Now()
	if err := c.Next(); err != nil {
		if err := h.handleError(c, err); err != nil {
			return err
		}
	}
	h.logger(c).Info("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return nil
}

func (h *Handler) rateLimit(c *fiber.Ctx) error {
	if h.Limiter != nil && !h.Limiter.Allow() {
		return writeError(c, fiber.StatusTooManyRequests, "Too many requests, slow down.")
	}
	return c.Next()
}

// handleError turns errors that escaped a handler, including recovered
// panics, into the usual JSON error body.
func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	h.logger(c).Error("request failed", "status", code, "error", err)
	return writeError(c, code, err.Error())
}

func (h *Handler) logger(c *fiber.Ctx) *slog.Logger {
	l := h.Log
	if l == nil {
		l = slog.Default()
	}
	return l.With("request_id", requestIDFrom(c))
}

func requestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ParseResponse{
		Success:   false,
		Error:     msg,
		RequestID: requestIDFrom(c),
	})
}
