package mfsecret

import (
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	"github.com/urfave/cli/v2"
)

var SecretOpts struct {
	Name string
}

var SecretNameFlag = mfcli.StringFlag("secret-name", "secrets manager secret holding the sms and supabase credentials", &SecretOpts.Name)

var SecretFlags = []cli.Flag{
	SecretNameFlag,
}
