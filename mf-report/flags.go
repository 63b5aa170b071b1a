package mfreport

import (
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	"github.com/urfave/cli/v2"
)

var ReportOpts struct {
	Bucket string

	OutFile   string
	GetLatest bool
}

var BucketFlag = mfcli.StringFlagEnv("audit-bucket", "the bucket dispatch reports are written to", &ReportOpts.Bucket, []string{"AUDIT_BUCKET"})
var OutFileFlag = mfcli.StringFlag("out-file", "the file dispatch reports are written to when no bucket is set", &ReportOpts.OutFile)
var GetLatestFlag = mfcli.BoolFlag("get-latest", "print the latest dispatch report from the bucket and exit", &ReportOpts.GetLatest)

var ReportFlags = []cli.Flag{
	BucketFlag,
	OutFileFlag,
	GetLatestFlag,
}
