// internal/app/features/settings/handler.go
package settings

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
	"github.com/dalemusser/chapterhub/internal/app/documents/docsettings"
	errorsfeature "github.com/dalemusser/chapterhub/internal/app/features/errors"
	"github.com/dalemusser/chapterhub/internal/app/store/artifacts"
	"github.com/dalemusser/chapterhub/internal/app/system/auditlog"
	"github.com/dalemusser/chapterhub/internal/app/system/auth"
	"github.com/dalemusser/chapterhub/internal/domain/models"
)

// ChapterStore reads chapters and writes their branding.
type ChapterStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Chapter, error)
	UpdateDocumentSettings(ctx context.Context, id primitive.ObjectID, blob map[string]any) error
	UpdateLogo(ctx context.Context, id primitive.ObjectID, logoPath string) error
}

// Handler owns the chapter document-settings and logo endpoints.
type Handler struct {
	Chapters ChapterStore
	Storage  artifacts.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
	ErrLog   *errorsfeature.ErrorLogger
}

// NewHandler constructs a Handler bound to the chapter store and file storage.
func NewHandler(chapters ChapterStore, store artifacts.Store, audit *auditlog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Chapters: chapters,
		Storage:  store,
		Audit:    audit,
		Log:      logger,
		ErrLog:   errLog,
	}
}

type settingsResponse struct {
	ChapterID string                              `json:"chapter_id"`
	Settings  map[string]any                      `json:"document_settings"`
	Effective map[string]docsettings.TypeSettings `json:"effective"`
	LogoPath  string                              `json:"logo_path,omitempty"`
}

// chapter loads the chapter named by the {id} path parameter. Malformed ids
// and chapters outside the caller's scope are reported as not found.
func (h *Handler) chapter(r *http.Request) (models.Chapter, *auth.SessionUser, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return models.Chapter{}, nil, fmt.Errorf("chapter: %w", docerr.ErrNotFound)
	}
	u, _ := auth.CurrentUser(r)
	if !u.CanAccessChapter(id.Hex()) {
		return models.Chapter{}, nil, fmt.Errorf("chapter %s: %w", id.Hex(), docerr.ErrNotFound)
	}
	ch, err := h.Chapters.GetByID(r.Context(), id)
	if err != nil {
		return models.Chapter{}, nil, err
	}
	return ch, u, nil
}

func (h *Handler) respond(w http.ResponseWriter, ch models.Chapter) {
	res := docsettings.NewResolver(h.Log)
	eff := make(map[string]docsettings.TypeSettings, len(docsettings.TypeKeys))
	for _, key := range docsettings.TypeKeys {
		eff[key] = res.Resolve(ch.DocumentSettings, key)
	}
	blob := ch.DocumentSettings
	if blob == nil {
		blob = map[string]any{}
	}
	errorsfeature.JSON(w, http.StatusOK, settingsResponse{
		ChapterID: ch.ID.Hex(),
		Settings:  blob,
		Effective: eff,
		LogoPath:  ch.LogoPath,
	})
}
