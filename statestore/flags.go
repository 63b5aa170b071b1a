package statestore

import (
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	"github.com/urfave/cli/v2"
)

const (
	SupabaseBackend = "supabase"
	DynamoDBBackend = "dynamodb"
)

var StoreOpts struct {
	Backend string
	StateID string
}

var BackendFlag = mfcli.StringFlag("store", "state store backend: supabase or dynamodb", &StoreOpts.Backend, SupabaseBackend)
var StateIDFlag = mfcli.StringFlag("state-id", "id of the send state row (dynamodb only; supabase reads the first row)", &StoreOpts.StateID, "morning-financial")

var StoreFlags = []cli.Flag{
	BackendFlag,
	StateIDFlag,
}
