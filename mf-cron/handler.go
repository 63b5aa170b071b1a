// Package mfcron runs a scheduled job either once from a terminal or as the
// handler of a Lambda function triggered on a schedule.
package mfcron

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	"github.com/rs/zerolog"
)

type RunCallback func(ctx context.Context) error

// StatusFunc maps the outcome of a run to the status code reported to the
// Lambda caller.
type StatusFunc func(err error) int

// Response is the Lambda result: statusCode 204 on success, the mapped status
// and the error text otherwise.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body,omitempty"`
}

type Handler struct {
	service mfcli.Service
	logger  zerolog.Logger

	runOnce RunCallback
	status  StatusFunc
}

func NewHandler(
	service mfcli.Service,
	runOnce RunCallback,
	status StatusFunc,
) *Handler {
	if status == nil {
		status = defaultStatus
	}
	return &Handler{
		service: service,
		logger:  mfcli.Logger(service),
		runOnce: runOnce,
		status:  status,
	}
}

func defaultStatus(err error) int {
	if err != nil {
		return http.StatusInternalServerError
	}
	return http.StatusNoContent
}

// RunOnce executes the job with the handler's logger attached to ctx.
func (h *Handler) RunOnce(ctx context.Context) error {
	ctx = h.logger.WithContext(ctx)
	h.logger.Info().Msg("running scheduled task")
	if err := h.runOnce(ctx); err != nil {
		h.logger.Error().Err(err).Msg("scheduled task failed")
		return err
	}
	return nil
}

// Invoke is the Lambda entry point. Failures are reported in the response
// rather than as a Lambda error so the scheduler does not retry the run.
func (h *Handler) Invoke(ctx context.Context, _ json.RawMessage) (Response, error) {
	err := h.RunOnce(ctx)
	resp := Response{StatusCode: h.status(err)}
	if err != nil {
		resp.Body = err.Error()
	}
	return resp, nil
}

func (h *Handler) Start() error {
	switch {
	case mfcli.CommonOpts.Console:
		return h.RunOnce(context.Background())

	default:
		lambda.Start(h.Invoke)
	}
	return nil
}
