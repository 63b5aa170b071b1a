package mfddb

import (
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	"github.com/urfave/cli/v2"
)

var DDBOpts struct {
	DAXCluster string
	Endpoint   string
}

var DAXClusterFlag = mfcli.StringFlag("dax-cluster", "the DAX cluster to route dynamodb reads through", &DDBOpts.DAXCluster)
var EndpointFlag = mfcli.StringFlagEnv("dynamodb-endpoint", "dynamodb endpoint override, e.g. dynamodb local", &DDBOpts.Endpoint, []string{"DYNAMODB_ENDPOINT"})

var DDBFlags = []cli.Flag{
	DAXClusterFlag,
	EndpointFlag,
}
