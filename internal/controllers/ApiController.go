package controllers

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"repx/internal/models"
	"repx/internal/providers"
	"repx/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger    providers.Logger
	rating    services.RatingServiceInterface
	directory services.DirectoryServiceInterface
	sync      services.SyncServiceInterface
	cache     providers.CacheProviderInterface
}

func NewApiController(
	logger providers.Logger,
	rating services.RatingServiceInterface,
	directory services.DirectoryServiceInterface,
	sync services.SyncServiceInterface,
	cache providers.CacheProviderInterface,
) *ApiController {
	return &ApiController{
		logger:    logger,
		rating:    rating,
		directory: directory,
		sync:      sync,
		cache:     cache,
	}
}

type submitRequest struct {
	Target  string `json:"target"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// submitResponse reports the stored rating. Delivered false means the
// review cannot be framed for the wire; the local store keeps it
// either way.
type submitResponse struct {
	Rating    *models.Rating `json:"rating"`
	Delivered bool           `json:"delivered"`
	Reason    string         `json:"reason,omitempty"`
}

type deleteRequest struct {
	Timestamp int64  `json:"timestamp"`
	Driver    string `json:"driver,omitempty"`
	Reviewer  string `json:"reviewer,omitempty"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

type summaryResponse struct {
	Identity models.Identity `json:"identity"`
	Average  float64         `json:"average"`
	Count    int             `json:"count"`
}

// queryIdentity reads ?id=, falling back to the local participant.
func (ac *ApiController) queryIdentity(r *http.Request) models.Identity {
	id := models.Identity(r.URL.Query().Get("id"))
	if id.IsEmpty() {
		return ac.rating.LocalIdentity()
	}
	return id
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) SubmitRating(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		ac.logger.Debugf(providers.GetLogTypeByPath(r.URL.Path), "undecodable submit payload: %s", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	rating, err := ac.rating.SubmitRating(models.Identity(payload.Target), payload.Score, payload.Comment)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := submitResponse{Rating: rating, Delivered: true}
	if err := ac.sync.Deliver(rating); err != nil {
		resp.Delivered = false
		resp.Reason = err.Error()
	}

	ac.writeJSON(w, http.StatusCreated, resp)
}

func (ac *ApiController) GetGivenRatings(w http.ResponseWriter, r *http.Request) {
	ac.writeJSON(w, http.StatusOK, ac.rating.GivenRatings())
}

func (ac *ApiController) DeleteGivenRating(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		ac.logger.Debugf(providers.GetLogTypeByPath(r.URL.Path), "undecodable delete payload: %s", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	deleted := ac.rating.DeleteGiven(payload.Timestamp, models.Identity(payload.Driver))
	ac.writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

func (ac *ApiController) GetReceivedRatings(w http.ResponseWriter, r *http.Request) {
	id := ac.queryIdentity(r)
	ac.writeJSON(w, http.StatusOK, ac.rating.ReceivedRatings(id))
}

func (ac *ApiController) DeleteReceivedRating(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		ac.logger.Debugf(providers.GetLogTypeByPath(r.URL.Path), "undecodable delete payload: %s", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	deleted := ac.rating.DeleteReceived(payload.Timestamp, models.Identity(payload.Reviewer))
	ac.writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

func (ac *ApiController) GetSummary(w http.ResponseWriter, r *http.Request) {
	id := ac.queryIdentity(r)
	ac.serveFromCacheOrCompute(w, "summary:"+string(id), func() (any, error) {
		avg, count := ac.rating.Summary(id)
		return summaryResponse{Identity: id, Average: avg, Count: count}, nil
	})
}

func (ac *ApiController) SearchParticipants(w http.ResponseWriter, r *http.Request) {
	candidates, err := ac.directory.Search(r.URL.Query().Get("q"))
	if err != nil {
		if errors.Is(err, services.ErrNoCriteria) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.writeJSON(w, http.StatusOK, candidates)
}

func (ac *ApiController) GetMeta(w http.ResponseWriter, r *http.Request) {
	id := ac.queryIdentity(r)
	meta, ok := ac.rating.Meta(id)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	ac.writeJSON(w, http.StatusOK, meta)
}
