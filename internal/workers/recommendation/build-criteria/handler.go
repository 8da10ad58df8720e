package buildcriteria

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "bike-recommender/internal/common/errors"
	"bike-recommender/internal/common/logger"
	"bike-recommender/internal/common/metrics"
	"bike-recommender/internal/common/observability"
	"bike-recommender/internal/common/validation"
	"bike-recommender/internal/matching"
	"bike-recommender/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "build-criteria"

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
		h.fail(ctx, client, job, startTime, apperrors.NewInvalidAnswerShapeError(fmt.Errorf("parse input: %w", err)))
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
	raw := bytes.TrimSpace(input.Answers)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, apperrors.NewInvalidAnswerShapeError(fmt.Errorf("%w: answers missing", models.ErrInvalidAnswerShape))
	}

	result, err := validation.ValidateAnswers(raw)
	if err != nil {
		return nil, apperrors.NewInvalidAnswerShapeError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidAnswerShapeError(
			fmt.Errorf("%w: %s", models.ErrInvalidAnswerShape, result.Summary()),
		)
	}

	var q models.Questionnaire
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, apperrors.NewInvalidAnswerShapeError(err)
	}

	criteria := matching.BuildCriteria(q)
	metrics.CriteriaBuilt.WithLabelValues(experienceLabel(q.Experience), regionLabel(q.Region)).Inc()

	h.logger.Info("criteria built", map[string]interface{}{
		"minCC":         criteria.MinCC,
		"maxCC":         criteria.MaxCC,
		"minPrice":      criteria.MinPrice,
		"maxPrice":      criteria.MaxPrice,
		"maxSeatHeight": criteria.MaxSeatHeight,
		"brands":        len(criteria.AllowedBrands),
		"categories":    criteria.InterestedCategories,
	})
	if criteria.Inverted() {
		h.logger.Warn("criteria range inverted, no bike can match", map[string]interface{}{
			"minCC": criteria.MinCC,
			"maxCC": criteria.MaxCC,
		})
	}

	return &Output{Criteria: criteria, Inverted: criteria.Inverted()}, nil
}

// Metric labels are bounded to the known answer values.
func experienceLabel(level models.ExperienceLevel) string {
	switch level {
	case models.ExperienceBeginner, models.ExperienceIntermediate, models.ExperienceAdvanced:
		return string(level)
	}
	return "unset"
}

func regionLabel(region models.Region) string {
	if region.IsValid() {
		return string(region)
	}
	return "any"
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
