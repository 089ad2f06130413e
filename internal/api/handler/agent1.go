package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/heliohq/mpc/internal/domain"
	"github.com/heliohq/mpc/internal/service"
	"github.com/heliohq/mpc/internal/stream"
)

// Agent1Handler exposes the collection and extraction pipeline. The agent1
// prefix keeps room in the URL space for later agents of the coaching flow.
type Agent1Handler struct {
	collector *service.CollectorService
	extractor *service.ExtractorService
}

// NewAgent1Handler creates the pipeline handler.
func NewAgent1Handler(collector *service.CollectorService, extractor *service.ExtractorService) *Agent1Handler {
	return &Agent1Handler{
		collector: collector,
		extractor: extractor,
	}
}

type collectRequest struct {
	Role     string            `json:"role"`
	Location string            `json:"location"`
	Quota    int               `json:"quota"`
	RadiusKm int               `json:"radius_km"`
	Filters  domain.JobFilters `json:"filters"`
}

func (r collectRequest) query() domain.JobQuery {
	return domain.JobQuery{
		Role:     r.Role,
		Location: r.Location,
		Quota:    r.Quota,
		RadiusKm: r.RadiusKm,
		Filters:  r.Filters,
	}
}

type analyzeRequest struct {
	collectRequest
	CollectionID string `json:"collection_id"`
	Area         string `json:"area"`
}

// CollectJobs handles POST /api/agent1/collect-jobs.
func (h *Agent1Handler) CollectJobs(c *gin.Context) {
	var req collectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	collection, err := h.collector.Collect(c.Request.Context(), req.query())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

// Collections handles GET /api/agent1/collections.
func (h *Agent1Handler) Collections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"collections": h.collector.List()})
}

// Collection handles GET /api/agent1/collections/:id.
func (h *Agent1Handler) Collection(c *gin.Context) {
	collection, err := h.collector.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, collection)
}

// AnalyzeKeywords handles POST /api/agent1/analyze-keywords. Without a
// collection_id the whole pipeline runs: collect first, then extract.
func (h *Agent1Handler) AnalyzeKeywords(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	collectionID := req.CollectionID
	if collectionID == "" {
		collection, err := h.collector.Collect(ctx, req.query())
		if err != nil {
			abortWithError(c, err)
			return
		}
		collectionID = collection.ID
	}

	run, err := h.extractor.Extract(ctx, collectionID, req.Role, req.Area, nil)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// Results handles GET /api/agent1/results, listing every extraction run as
// a summary, most recent first.
func (h *Agent1Handler) Results(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"results": h.extractor.ListRuns()})
}

// Transparency handles GET /api/agent1/transparency/:id, where id is a
// collection id. It exposes the full collection next to every extraction
// run made against it, raw model answers included.
func (h *Agent1Handler) Transparency(c *gin.Context) {
	collection, err := h.collector.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collection": collection,
		"runs":       h.extractor.RunsForCollection(collection.ID),
	})
}

// CollectJobsStream handles POST /api/agent1/collect-jobs-stream, streaming
// collection progress over SSE. The body matches collect-jobs.
func (h *Agent1Handler) CollectJobsStream(c *gin.Context) {
	var req collectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.serveStream(c, func(ctx context.Context, queue *stream.Queue) {
		em := stream.NewEmitter(uuid.New().String(), domain.PhaseCollection, queue)
		if _, err := h.collector.CollectStreaming(ctx, req.query(), em); err != nil {
			// Normalization failures never reach the emitter.
			em.Emit(domain.EventError, "coleta não iniciada", 0, map[string]any{"reason": err.Error()})
		}
	})
}

// AnalyzeKeywordsStream handles POST /api/agent1/analyze-keywords-stream,
// streaming the whole pipeline over SSE. The body matches analyze-keywords.
func (h *Agent1Handler) AnalyzeKeywordsStream(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.serveStream(c, func(ctx context.Context, queue *stream.Queue) {
		pipelineID := uuid.New().String()
		collectionID := req.CollectionID

		if collectionID == "" {
			em := stream.NewEmitter(pipelineID, domain.PhaseCollection, queue)
			collection, err := h.collector.CollectStreaming(ctx, req.query(), em)
			if err != nil {
				em.Emit(domain.EventError, "coleta não iniciada", 0, map[string]any{"reason": err.Error()})
				return
			}
			collectionID = collection.ID
		}

		em := stream.NewEmitter(pipelineID, domain.PhaseExtraction, queue)
		if _, err := h.extractor.Extract(ctx, collectionID, req.Role, req.Area, em); err != nil && errors.Is(err, domain.ErrNotFound) {
			em.Emit(domain.EventError, "coleção não encontrada", 0, map[string]any{"reason": "not_found"})
		}
	})
}

// serveStream runs the producer in the background and relays its events in
// SSE framing until the queue closes or the client goes away.
func (h *Agent1Handler) serveStream(c *gin.Context, produce func(ctx context.Context, queue *stream.Queue)) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	queue := stream.NewQueue()
	ctx := c.Request.Context()

	go func() {
		defer queue.Close()
		produce(ctx, queue)
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-queue.Events():
			if !ok {
				return false
			}
			if err := stream.WriteEvent(w, ev); err != nil {
				return false
			}
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// abortWithError maps pipeline sentinels onto HTTP statuses. Anything
// unknown is a bare 500.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrDeadline):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "deadline exceeded", "reason": "deadline"})
	case errors.Is(err, domain.ErrAdapterUnavailable), errors.Is(err, domain.ErrModelUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
