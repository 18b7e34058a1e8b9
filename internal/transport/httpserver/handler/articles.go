package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	articledomain "community-grocery-go/internal/domain/article"
)

type articleRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Unit        string   `json:"unit" validate:"required,oneof=kg g l ml piece pack"`
	Category    string   `json:"category" validate:"required,oneof=fruits vegetables dairy meat bakery beverages pantry frozen household"`
	Available   *bool    `json:"available"`
}

type articleResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Price       float64                `json:"price"`
	Unit        articledomain.Unit     `json:"unit"`
	Category    articledomain.Category `json:"category"`
	Available   bool                   `json:"available"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

func (h *Handlers) ListArticles(w http.ResponseWriter, r *http.Request) {
	var filter articledomain.ListFilter
	if value := strings.TrimSpace(r.URL.Query().Get("category")); value != "" {
		category := articledomain.Category(strings.ToLower(value))
		filter.Category = &category
	}
	available, err := parseBoolParam(r.URL.Query().Get("available"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "available must be true or false")
		return
	}
	filter.Available = available

	articles, err := h.Articles.ListArticles(r.Context(), filter)
	if err != nil {
		h.writeArticleError(w, r, "articles.list", err)
		return
	}

	response := make([]articleResponse, 0, len(articles))
	for i := range articles {
		response = append(response, toArticleResponse(&articles[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetArticle(w http.ResponseWriter, r *http.Request) {
	articleID, ok := h.articleParam(w, r, "articles.get")
	if !ok {
		return
	}
	article, err := h.Articles.GetArticle(r.Context(), articleID)
	if err != nil {
		h.writeArticleError(w, r, "articles.get", err, "article_id", articleID)
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *Handlers) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	article, err := h.Articles.CreateArticle(r.Context(), req.toInput())
	if err != nil {
		h.writeArticleError(w, r, "articles.create", err)
		return
	}
	writeJSON(w, http.StatusCreated, toArticleResponse(article))
}

func (h *Handlers) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	articleID, ok := h.articleParam(w, r, "articles.update")
	if !ok {
		return
	}
	article, err := h.Articles.UpdateArticle(r.Context(), articleID, req.toInput())
	if err != nil {
		h.writeArticleError(w, r, "articles.update", err, "article_id", articleID)
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *Handlers) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	articleID, ok := h.articleParam(w, r, "articles.delete")
	if !ok {
		return
	}
	if err := h.Articles.DeleteArticle(r.Context(), articleID); err != nil {
		h.writeArticleError(w, r, "articles.delete", err, "article_id", articleID)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "article deleted"})
}

func (h *Handlers) articleParam(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	articleID, valid := pathID(r)
	if !valid {
		h.writeArticleError(w, r, op, articledomain.ErrArticleNotFound, "article_id", articleID)
	}
	return articleID, valid
}

func (h *Handlers) writeArticleError(w http.ResponseWriter, r *http.Request, op string, err error, args ...any) {
	log := h.logger(r.Context())
	switch {
	case errors.Is(err, articledomain.ErrArticleNotFound):
		log.BusinessError(op+": article not found", err, args...)
		writeError(w, http.StatusNotFound, "article_not_found", "article not found")
	case errors.Is(err, articledomain.ErrNameRequired),
		errors.Is(err, articledomain.ErrInvalidPrice),
		errors.Is(err, articledomain.ErrInvalidUnit),
		errors.Is(err, articledomain.ErrInvalidCategory):
		log.BusinessError(op+": invalid input", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		log.InternalError(op+": failed", err, args...)
		writeInternal(w, "internal error", err)
	}
}

func (req articleRequest) toInput() articledomain.Input {
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return articledomain.Input{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Unit:        articledomain.Unit(req.Unit),
		Category:    articledomain.Category(req.Category),
		Available:   available,
	}
}

func toArticleResponse(article *articledomain.Article) articleResponse {
	return articleResponse{
		ID:          article.ID,
		Name:        article.Name,
		Description: article.Description,
		Price:       article.Price,
		Unit:        article.Unit,
		Category:    article.Category,
		Available:   article.Available,
		CreatedAt:   article.CreatedAt,
		UpdatedAt:   article.UpdatedAt,
	}
}
