package job

import (
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	"github.com/urfave/cli/v2"
)

var JobOpts struct {
	MarkerPolicy  string
	SkipEmpty     bool
	AtomicMarkers bool
}

var MarkerPolicyFlag = mfcli.StringFlag("marker-policy", "when markers advance: on-dispatch or on-fetch", &JobOpts.MarkerPolicy, string(AdvanceOnDispatch))
var SkipEmptyFlag = mfcli.BoolFlag("skip-empty", "skip the dispatch when there are no new posts (on-dispatch only)", &JobOpts.SkipEmpty, true)
var AtomicMarkersFlag = mfcli.BoolFlag("atomic-markers", "write both markers in a single store operation", &JobOpts.AtomicMarkers)

var JobFlags = []cli.Flag{
	MarkerPolicyFlag,
	SkipEmptyFlag,
	AtomicMarkersFlag,
}
