package sms

import (
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	"github.com/urfave/cli/v2"
)

var SMSOpts struct {
	URL       string
	APIKey    string
	APISecret string
	Sender    string
}

var URLFlag = mfcli.StringFlagEnv("sms-url", "SMS gateway batch send endpoint", &SMSOpts.URL, []string{"SMS_API"})
var APIKeyFlag = mfcli.StringFlag("sms-api-key", "SMS gateway api key", &SMSOpts.APIKey)
var APISecretFlag = mfcli.StringFlag("sms-api-secret", "SMS gateway api secret", &SMSOpts.APISecret)
var SenderFlag = mfcli.StringFlagEnv("sender", "registered sender phone number", &SMSOpts.Sender, []string{"SENDER_PHONE_NUMBER"})

var SMSFlags = []cli.Flag{
	URLFlag,
	APIKeyFlag,
	APISecretFlag,
	SenderFlag,
}
