package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/morningfinancial/morning-financial/feed"
	"github.com/morningfinancial/morning-financial/job"
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	mfcron "github.com/morningfinancial/morning-financial/mf-cron"
	mfddb "github.com/morningfinancial/morning-financial/mf-ddb"
	mfreport "github.com/morningfinancial/morning-financial/mf-report"
	mfsecret "github.com/morningfinancial/morning-financial/mf-secret"
	"github.com/morningfinancial/morning-financial/signer"
	"github.com/morningfinancial/morning-financial/sms"
	"github.com/morningfinancial/morning-financial/statestore"
	"github.com/morningfinancial/morning-financial/statestore/ddbstore"
	"github.com/morningfinancial/morning-financial/statestore/statedao"
	"github.com/morningfinancial/morning-financial/statestore/subscriberdao"
	"github.com/morningfinancial/morning-financial/statestore/supabase"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const reportName = "dispatch"

func action(c *cli.Context) error {
	logger := mfcli.Logger(service)
	ctx := logger.WithContext(c.Context)

	var awsSession *session.Session
	aws := func() (*session.Session, error) {
		if awsSession != nil {
			return awsSession, nil
		}
		s, err := mfcli.AWSSession()
		if err != nil {
			return nil, err
		}
		awsSession = s
		return s, nil
	}

	if mfreport.ReportOpts.GetLatest {
		s, err := aws()
		if err != nil {
			return err
		}
		key, err := mfreport.PrintLatest(ctx, s3.New(s), mfreport.ReportOpts.Bucket, service.Name, reportName, os.Stdout)
		if err != nil {
			return err
		}
		logger.Info().Str("key", key).Msg("printed latest dispatch report")
		return nil
	}

	return mfcron.NewHandler(service, newRun(aws), job.StatusCode).Start()
}

// newRun builds and runs the job on every invocation, so configuration errors
// are reported through the handler's status mapping like any other failure.
func newRun(aws func() (*session.Session, error)) mfcron.RunCallback {
	return func(ctx context.Context) error {
		j, err := buildJob(ctx, aws)
		if err != nil {
			return err
		}
		_, err = j.Run(ctx)
		return err
	}
}

func buildJob(ctx context.Context, aws func() (*session.Session, error)) (*job.Job, error) {
	if mfsecret.SecretOpts.Name != "" {
		s, err := aws()
		if err != nil {
			return nil, err
		}
		if err := overlaySecret(ctx, s, mfsecret.SecretOpts.Name); err != nil {
			return nil, err
		}
	}

	options, err := jobOptions()
	if err != nil {
		return nil, err
	}
	if err := job.Require(required(options.Dry)...); err != nil {
		return nil, err
	}

	store, err := buildStore(aws)
	if err != nil {
		return nil, err
	}

	j := &job.Job{
		Store:      store,
		Kakao:      feed.NewFetcher(feed.Kakao(feed.FeedOpts.KakaoURL, feed.FeedOpts.KakaoLinkTemplate), mfcli.CommonOpts.HTTPTimeout),
		Toss:       feed.NewFetcher(feed.Toss(feed.FeedOpts.TossURL, feed.FeedOpts.TossLinkTemplate), mfcli.CommonOpts.HTTPTimeout),
		Dispatcher: sms.NewClient(sms.SMSOpts.URL, signer.New(sms.SMSOpts.APIKey, sms.SMSOpts.APISecret), mfcli.CommonOpts.HTTPTimeout),
		Sender:     sms.SMSOpts.Sender,
		Options:    options,
	}

	if mfcli.CommonOpts.Metrics {
		s, err := aws()
		if err != nil {
			return nil, err
		}
		j.Metrics = mfcli.NewMetrics(service, cloudwatch.New(s))
	}

	switch {
	case options.Dry:
		j.Audit = mfreport.NewWriter(service, nil, "", mfreport.ReportOpts.OutFile, reportName)
	case mfreport.ReportOpts.Bucket != "":
		s, err := aws()
		if err != nil {
			return nil, err
		}
		j.Audit = mfreport.NewWriter(service, s3.New(s), mfreport.ReportOpts.Bucket, "", reportName)
	case mfreport.ReportOpts.OutFile != "":
		j.Audit = mfreport.NewWriter(service, nil, "", mfreport.ReportOpts.OutFile, reportName)
	}

	return j, nil
}

func jobOptions() (job.Options, error) {
	policy, err := job.ParseMarkerPolicy(job.JobOpts.MarkerPolicy)
	if err != nil {
		return job.Options{}, err
	}
	return job.Options{
		MarkerPolicy:  policy,
		SkipEmpty:     job.JobOpts.SkipEmpty,
		AtomicMarkers: job.JobOpts.AtomicMarkers,
		Dry:           mfcli.CommonOpts.Dry,
	}, nil
}

// required lists the settings the run cannot start without. Gateway
// credentials are not needed for a dry run.
func required(dry bool) []job.Setting {
	settings := []job.Setting{
		job.Var("KAKAO_BANK_POSTS_API", feed.FeedOpts.KakaoURL),
		job.Var("TOSS_BANK_POSTS_API", feed.FeedOpts.TossURL),
	}
	if !dry {
		settings = append(settings,
			job.Var("SMS_API", sms.SMSOpts.URL),
			job.Var("SMS_API_KEY", sms.SMSOpts.APIKey),
			job.Var("SMS_API_SECRET", sms.SMSOpts.APISecret),
			job.Var("SENDER_PHONE_NUMBER", sms.SMSOpts.Sender),
		)
	}
	if statestore.StoreOpts.Backend == statestore.SupabaseBackend {
		settings = append(settings,
			job.Var("SUPABASE_URL", supabase.SupabaseOpts.URL),
			job.Var("SUPABASE_KEY", supabase.SupabaseOpts.Key),
			job.Var("SUPABASE_USER_EMAIL", supabase.SupabaseOpts.Email),
			job.Var("SUPABASE_USER_PASSWORD", supabase.SupabaseOpts.Password),
			job.Var("TABLE_NAME_3", supabase.SupabaseOpts.SubscriberTable),
		)
	}
	return settings
}

func buildStore(aws func() (*session.Session, error)) (statestore.Opener, error) {
	switch statestore.StoreOpts.Backend {
	case statestore.SupabaseBackend:
		return supabase.New(supabase.Config{
			URL:             supabase.SupabaseOpts.URL,
			Key:             supabase.SupabaseOpts.Key,
			Email:           supabase.SupabaseOpts.Email,
			Password:        supabase.SupabaseOpts.Password,
			StateTable:      supabase.SupabaseOpts.StateTable,
			KakaoTable:      supabase.SupabaseOpts.KakaoTable,
			TossTable:       supabase.SupabaseOpts.TossTable,
			SubscriberTable: supabase.SupabaseOpts.SubscriberTable,
			Timeout:         mfcli.CommonOpts.HTTPTimeout,
		}), nil

	case statestore.DynamoDBBackend:
		s, err := aws()
		if err != nil {
			return nil, err
		}
		api, err := mfddb.DynamoDBAPI(s)
		if err != nil {
			return nil, err
		}
		return ddbstore.New(
			statedao.Build(api, mfcli.CommonOpts.Env),
			subscriberdao.Build(api, mfcli.CommonOpts.Env),
			statestore.StoreOpts.StateID,
		), nil

	default:
		return nil, fmt.Errorf("%w: unknown store backend %q (want %v or %v)", job.ErrConfigMissing, statestore.StoreOpts.Backend, statestore.SupabaseBackend, statestore.DynamoDBBackend)
	}
}

func overlaySecret(ctx context.Context, s *session.Session, name string) error {
	var creds mfsecret.Credentials
	if err := mfsecret.LoadSecret(s, name, &creds); err != nil {
		return err
	}
	n := mfsecret.Overlay(
		mfsecret.Target{Dest: &sms.SMSOpts.APIKey, Value: creds.SMSAPIKey},
		mfsecret.Target{Dest: &sms.SMSOpts.APISecret, Value: creds.SMSAPISecret},
		mfsecret.Target{Dest: &supabase.SupabaseOpts.Key, Value: creds.SupabaseKey},
		mfsecret.Target{Dest: &supabase.SupabaseOpts.Email, Value: creds.SupabaseEmail},
		mfsecret.Target{Dest: &supabase.SupabaseOpts.Password, Value: creds.SupabasePassword},
	)
	zerolog.Ctx(ctx).Info().Str("secret", name).Int("applied", n).Msg("loaded credentials from secrets manager")
	return nil
}
