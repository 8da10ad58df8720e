package filtercatalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bike-recommender/internal/catalog"
	apperrors "bike-recommender/internal/common/errors"
	"bike-recommender/internal/common/logger"
	"bike-recommender/internal/common/metrics"
	"bike-recommender/internal/common/observability"
	"bike-recommender/internal/common/validation"
	"bike-recommender/internal/matching"
	"bike-recommender/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "filter-catalog"

type Handler struct {
	config       *Config
	source       catalog.Source
	obs          *observability.Observability
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, source catalog.Source, obs *observability.Observability, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{
		"taskType":      TaskType,
		"catalogSource": source.Name(),
	})
	return &Handler{
		config:       config,
		source:       source,
		obs:          obs,
		errorHandler: apperrors.NewErrorHandler(scoped),
		logger:       scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, startTime, apperrors.NewInvalidCriteriaError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, startTime, err)
		return
	}

	if err := h.completeJob(client, job, output); err != nil {
		h.fail(ctx, client, job, startTime, err)
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "completed")
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	criteria, err := decodeCriteria(input.Criteria)
	if err != nil {
		return nil, err
	}

	loadStarted := time.Now()
	snap, err := h.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	metrics.ObserveCatalogLoad(h.source.Name(), h.cacheLabel(snap), loadStarted)

	filter := matching.NewFilter(criteria, h.config.Policy)
	matches := filter.Apply(snap.Records)
	metrics.ObserveFilterRun(snap.Source, snap.Len(), len(matches))

	out := &Output{
		RecommendationID: uuid.NewString(),
		Matches:          matches,
		Columns:          snap.Columns,
		Summary: models.MatchSummary{
			Scanned: snap.Len(),
			Matched: len(matches),
			Source:  snap.Source,
		},
	}
	out.Summary.RecommendationID = out.RecommendationID

	if limit := h.limit(input.MaxResults); limit > 0 && len(out.Matches) > limit {
		out.Matches = out.Matches[:limit]
		out.Truncated = true
	}

	fields := map[string]interface{}{
		"recommendationId": out.RecommendationID,
		"scanned":          out.Summary.Scanned,
		"matched":          out.Summary.Matched,
		"returned":         len(out.Matches),
		"fromCache":        snap.FromCache,
	}
	if criteria.Inverted() {
		fields["inverted"] = true
	}
	if out.Summary.Matched == 0 {
		h.logger.Info("no bikes matched", fields)
	} else {
		h.logger.Info("catalog filtered", fields)
	}

	return out, nil
}

func decodeCriteria(raw json.RawMessage) (models.FilterCriteria, error) {
	var criteria models.FilterCriteria

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return criteria, apperrors.NewInvalidCriteriaError("criteria missing")
	}

	result, err := validation.ValidateCriteria(raw)
	if err != nil {
		return criteria, apperrors.NewInvalidCriteriaError(err.Error())
	}
	if !result.Valid {
		return criteria, apperrors.NewInvalidCriteriaError(result.Summary())
	}

	if err := json.Unmarshal(raw, &criteria); err != nil {
		return criteria, apperrors.NewInvalidCriteriaError(err.Error())
	}
	return criteria, nil
}

// limit picks the smaller positive cap of the input and the config.
func (h *Handler) limit(requested int) int {
	switch {
	case requested <= 0:
		return h.config.MaxResults
	case h.config.MaxResults <= 0:
		return requested
	default:
		return min(requested, h.config.MaxResults)
	}
}

func (h *Handler) cacheLabel(snap *catalog.Snapshot) string {
	switch {
	case snap.FromMemo:
		return "memo"
	case snap.FromCache:
		return "hit"
	case h.config.CacheEnabled:
		return "miss"
	default:
		return "none"
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, startTime time.Time, err error) {
	code := apperrors.Normalize(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "failed")
	// The job context may already be past its deadline.
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	vars, err := encodeOutput(output)
	if err != nil {
		return err
	}
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromString(vars)
	if err != nil {
		return apperrors.NewOutputEncodingError(err)
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		// Left for the broker to time out and hand out again.
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
	return nil
}

// encodeOutput renders the job variables. A value JSON cannot carry fails
// the job for good; retrying would produce the same output.
func encodeOutput(output *Output) (string, error) {
	data, err := json.Marshal(output)
	if err != nil {
		return "", apperrors.NewOutputEncodingError(err)
	}
	return string(data), nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
