package micropub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/openbracket/micro-publish/internal/publish"
)

// Publisher is the slice of the publishing pipeline the protocol layer
// depends on.
type Publisher interface {
	Publish(ctx context.Context, doc *publish.Document) (*publish.Result, error)
	UploadMedia(ctx context.Context, doc *publish.Document) []string
}

// Endpoint advertises the server's capabilities in q=config responses.
type Endpoint struct {
	// MediaEndpoint is the advertised media endpoint URL, if any.
	MediaEndpoint string

	// SyndicateTo lists the advertised syndication targets.
	SyndicateTo []string
}

// SyndicationTarget is one advertised syndication target.
type SyndicationTarget struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// Handler exposes the micropub HTTP surface.
type Handler struct {
	publisher Publisher
	verifier  *TokenVerifier
	endpoint  Endpoint
	logger    *slog.Logger
}

// NewHandler creates a micropub handler.
func NewHandler(publisher Publisher, verifier *TokenVerifier, endpoint Endpoint, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		publisher: publisher,
		verifier:  verifier,
		endpoint:  endpoint,
		logger:    logger,
	}
}

// Routes returns the router for the micropub endpoint.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.authenticate)
	r.Get("/", h.query)
	r.Post("/", h.create)
	r.Post("/media", h.media)
	return r
}

func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.verifier.Verify(r.Context(), bearerToken(r)); err != nil {
			h.logger.Warn("request rejected", "error", err)
			status := http.StatusUnauthorized
			if errors.Is(err, ErrWrongUser) {
				status = http.StatusForbidden
			}
			render.Status(r, status)
			render.JSON(w, r, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// query answers q=config and q=syndicate-to capability queries.
func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("q") {
	case "config":
		resp := map[string]interface{}{}
		if h.endpoint.MediaEndpoint != "" {
			resp["media-endpoint"] = h.endpoint.MediaEndpoint
		}
		if len(h.endpoint.SyndicateTo) > 0 {
			resp["syndicate-to"] = h.syndicationTargets()
		}
		render.JSON(w, r, resp)
	case "syndicate-to":
		if len(h.endpoint.SyndicateTo) == 0 {
			render.JSON(w, r, map[string]interface{}{})
			return
		}
		render.JSON(w, r, map[string]interface{}{"syndicate-to": h.syndicationTargets()})
	default:
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid_request"})
	}
}

func (h *Handler) syndicationTargets() []SyndicationTarget {
	targets := make([]SyndicationTarget, 0, len(h.endpoint.SyndicateTo))
	for _, uid := range h.endpoint.SyndicateTo {
		targets = append(targets, SyndicationTarget{UID: uid, Name: uid})
	}
	return targets
}

// create handles a publish request: parse, hand the document to the
// publisher, and answer 201 with the public URL.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	doc, err := ParseRequest(r)
	if err != nil {
		h.logger.Warn("failed to parse create request", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid_request"})
		return
	}

	h.logger.Info("received micropub document", "type", strings.Join(doc.Type, ","))

	result, err := h.publisher.Publish(r.Context(), doc)
	if err != nil {
		h.logger.Error("publish failed", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "publish failed"})
		return
	}

	w.Header().Set("Location", result.URL)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"url": result.URL})
}

// media handles a media upload request. A request whose uploads all fail
// answers an empty object, matching the create/media contract.
func (h *Handler) media(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("received request for media handling")

	doc, err := ParseRequest(r)
	if err != nil {
		h.logger.Warn("failed to parse media request", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid_request"})
		return
	}

	urls := h.publisher.UploadMedia(r.Context(), doc)
	if len(urls) == 0 {
		h.logger.Warn("failed to upload the media")
		render.JSON(w, r, map[string]interface{}{})
		return
	}

	url := strings.Join(urls, ", ")
	w.Header().Set("Location", urls[0])
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"url": url})
}
