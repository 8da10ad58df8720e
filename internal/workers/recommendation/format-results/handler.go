package formatresults

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "bike-recommender/internal/common/errors"
	"bike-recommender/internal/common/logger"
	"bike-recommender/internal/common/metrics"
	"bike-recommender/internal/common/observability"
	"bike-recommender/internal/presentation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "format-results"

type Handler struct {
	config       *Config
	obs          *observability.Observability
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, obs *observability.Observability, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
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
		h.fail(ctx, client, job, startTime, apperrors.NewInvalidResultsError(fmt.Sprintf("parse input: %v", err)))
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

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.Matches == nil {
		return nil, apperrors.NewInvalidResultsError("matches missing; filter-catalog has not run")
	}

	cards := presentation.Cards(input.Matches, input.Columns)

	h.logger.Debug("results formatted", map[string]interface{}{
		"recommendationId": input.RecommendationID,
		"cards":            len(cards),
	})

	return &Output{
		RecommendationID: input.RecommendationID,
		Cards:            cards,
		CardCount:        len(cards),
		NoMatches:        len(cards) == 0,
	}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, startTime time.Time, err error) {
	code := apperrors.Normalize(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "failed")
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
