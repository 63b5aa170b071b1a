// Package job runs one pass of the morning financial notifier: read the send
// state, fetch both feeds, compose and dispatch the SMS batch, then advance the
// markers according to the configured policy.
package job

import (
	"context"
	"net/http"
	"time"

	"github.com/morningfinancial/morning-financial/feed"
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	"github.com/morningfinancial/morning-financial/sms"
	"github.com/morningfinancial/morning-financial/statestore"
	"github.com/rs/zerolog"
)

type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, last string) (feed.Result, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, messages []sms.Message) (*sms.Response, error)
}

// Recorder is satisfied by mfcli.Metrics.
type Recorder interface {
	Event(ctx context.Context, name mfcli.MetricName, dimensions ...map[mfcli.DimensionName]string)
	Gauge(ctx context.Context, name mfcli.MetricName, value float64, dimensions ...map[mfcli.DimensionName]string)
	Timing(ctx context.Context, name mfcli.MetricName, start time.Time, dimensions ...map[mfcli.DimensionName]string)
}

// Auditor receives a Report after every dispatch attempt and every dry run.
type Auditor interface {
	Write(ctx context.Context, v any) error
}

type Job struct {
	Store      statestore.Opener
	Kakao      Fetcher
	Toss       Fetcher
	Dispatcher Dispatcher
	Sender     string
	Options    Options

	// Metrics and Audit are optional.
	Metrics Recorder
	Audit   Auditor
}

type Result struct {
	Kakao      feed.Result
	Toss       feed.Result
	Message    string
	Recipients int
	StatusCode int

	Skipped         bool
	Dispatched      bool
	MarkersAdvanced bool
}

// Report is the audit record of a dispatch attempt or a dry run.
type Report struct {
	StartedAt  time.Time `json:"started_at"`
	Policy     string    `json:"policy"`
	KakaoLinks []string  `json:"kakao_links"`
	TossLinks  []string  `json:"toss_links"`
	Recipients int       `json:"recipients"`
	StatusCode int       `json:"status_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	Dry        bool      `json:"dry,omitempty"`
}

// Run executes the job once. The store session is closed on every path; a
// failure to close is only returned when the run itself succeeded.
func (j *Job) Run(ctx context.Context) (result Result, err error) {
	var (
		logger = zerolog.Ctx(ctx)
		begin  = time.Now()
	)
	defer func() {
		j.timing(ctx, mfcli.RunDurationMetric, begin)
		logger.Info().
			Dur("elapsed", time.Since(begin)).
			Err(err).
			Int("kakao", len(result.Kakao.Links)).
			Int("toss", len(result.Toss.Links)).
			Int("recipients", result.Recipients).
			Bool("skipped", result.Skipped).
			Bool("dispatched", result.Dispatched).
			Bool("markersAdvanced", result.MarkersAdvanced).
			Msg("run finished")
	}()

	session, err := j.Store.Open(ctx)
	if err != nil {
		return result, err
	}
	defer func() {
		if closeErr := session.Close(ctx); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("failed to close state store session")
			if err == nil {
				err = closeErr
			}
		}
	}()

	subs, err := session.Subscribers(ctx)
	if err != nil {
		return result, err
	}
	state, err := session.SendState(ctx)
	if err != nil {
		return result, err
	}
	if err := ValidateTemplate(state.MessageTemplate); err != nil {
		return result, err
	}

	result.Kakao, err = j.Kakao.Fetch(ctx, state.KakaoLastSendNo)
	if err != nil {
		return result, err
	}
	result.Toss, err = j.Toss.Fetch(ctx, state.TossLastSendKey)
	if err != nil {
		return result, err
	}

	// Under AdvanceOnFetch markers move once both feeds are in hand, whatever
	// happens to the dispatch. A failed fetch leaves both untouched.
	if j.Options.MarkerPolicy == AdvanceOnFetch && !j.Options.Dry {
		if err := j.advance(ctx, session, state.ID, result); err != nil {
			return result, err
		}
		result.MarkersAdvanced = true
	}

	j.gauge(ctx, mfcli.NewPostsMetric, float64(len(result.Kakao.Links)), map[mfcli.DimensionName]string{mfcli.SourceDimension: j.Kakao.Name()})
	j.gauge(ctx, mfcli.NewPostsMetric, float64(len(result.Toss.Links)), map[mfcli.DimensionName]string{mfcli.SourceDimension: j.Toss.Name()})

	if len(result.Kakao.Links) == 0 && len(result.Toss.Links) == 0 &&
		j.Options.MarkerPolicy != AdvanceOnFetch && j.Options.SkipEmpty {
		logger.Info().Msg("no new posts, nothing to send")
		result.Skipped = true
		j.event(ctx, mfcli.RunSkippedMetric)
		return result, nil
	}

	result.Message, err = Compose(state.MessageTemplate, result.Kakao.Links, result.Toss.Links)
	if err != nil {
		return result, err
	}

	recipients := statestore.PhoneNumbers(subs)
	result.Recipients = len(recipients)
	if len(recipients) == 0 {
		logger.Warn().Msg("no subscribers, nothing to send")
		result.Skipped = true
		j.event(ctx, mfcli.RunSkippedMetric)
		return result, nil
	}

	if j.Options.Dry {
		logger.Info().
			Str("message", result.Message).
			Strs("recipients", recipients).
			Msg("dry run, not dispatching")
		j.audit(ctx, begin, result, nil)
		return result, nil
	}

	resp, err := j.Dispatcher.Dispatch(ctx, sms.Messages(recipients, j.Sender, result.Message))
	if err == nil {
		result.StatusCode = resp.StatusCode
		if resp.StatusCode != http.StatusOK {
			err = &DispatchError{StatusCode: resp.StatusCode, Body: resp.Body}
		}
	}
	j.audit(ctx, begin, result, err)
	if err != nil {
		j.event(ctx, mfcli.DispatchFailedMetric)
		return result, err
	}
	result.Dispatched = true
	j.gauge(ctx, mfcli.MessagesDispatchedMetric, float64(len(recipients)))

	if j.Options.MarkerPolicy == AdvanceOnFetch {
		return result, nil
	}
	if err := j.advance(ctx, session, state.ID, result); err != nil {
		logger.Error().Err(err).Msg("messages were sent but markers were not advanced")
		return result, err
	}
	result.MarkersAdvanced = true
	return result, nil
}

func (j *Job) advance(ctx context.Context, session statestore.Session, id string, result Result) error {
	if j.Options.AtomicMarkers {
		return session.UpdateMarkers(ctx, id, statestore.Markers{
			KakaoLastSendNo: result.Kakao.Newest,
			TossLastSendKey: result.Toss.Newest,
		})
	}
	if err := session.UpdateKakaoMarker(ctx, id, result.Kakao.Newest); err != nil {
		return err
	}
	return session.UpdateTossMarker(ctx, id, result.Toss.Newest)
}

func (j *Job) audit(ctx context.Context, begin time.Time, result Result, dispatchErr error) {
	if j.Audit == nil {
		return
	}
	policy := j.Options.MarkerPolicy
	if policy == "" {
		policy = AdvanceOnDispatch
	}
	report := Report{
		StartedAt:  begin,
		Policy:     string(policy),
		KakaoLinks: result.Kakao.Links,
		TossLinks:  result.Toss.Links,
		Recipients: result.Recipients,
		StatusCode: result.StatusCode,
		Dry:        j.Options.Dry,
	}
	if dispatchErr != nil {
		report.Error = dispatchErr.Error()
	}
	if err := j.Audit.Write(ctx, report); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to write audit report")
	}
}

func (j *Job) event(ctx context.Context, name mfcli.MetricName) {
	if j.Metrics != nil {
		j.Metrics.Event(ctx, name)
	}
}

func (j *Job) gauge(ctx context.Context, name mfcli.MetricName, value float64, dimensions ...map[mfcli.DimensionName]string) {
	if j.Metrics != nil {
		j.Metrics.Gauge(ctx, name, value, dimensions...)
	}
}

func (j *Job) timing(ctx context.Context, name mfcli.MetricName, start time.Time) {
	if j.Metrics != nil {
		j.Metrics.Timing(ctx, name, start)
	}
}
