package main

import (
	"os"
	"slices"

	"github.com/joho/godotenv"
	"github.com/morningfinancial/morning-financial/feed"
	"github.com/morningfinancial/morning-financial/job"
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	mfddb "github.com/morningfinancial/morning-financial/mf-ddb"
	mfreport "github.com/morningfinancial/morning-financial/mf-report"
	mfsecret "github.com/morningfinancial/morning-financial/mf-secret"
	"github.com/morningfinancial/morning-financial/sms"
	"github.com/morningfinancial/morning-financial/statestore"
	"github.com/morningfinancial/morning-financial/statestore/supabase"
)

var service = mfcli.NewService("morning-financial")

func main() {
	_ = godotenv.Load()

	app := mfcli.App(service, action, slices.Concat(
		mfcli.CommonFlags,
		job.JobFlags,
		feed.FeedFlags,
		sms.SMSFlags,
		statestore.StoreFlags,
		supabase.SupabaseFlags,
		mfddb.DDBFlags,
		mfsecret.SecretFlags,
		mfreport.ReportFlags,
	)...)
	if err := app.Run(os.Args); err != nil {
		logger := mfcli.Logger(service)
		logger.Fatal().Err(err).Msg("morning-financial failed")
	}
}
