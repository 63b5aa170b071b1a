package supabase

import (
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	"github.com/urfave/cli/v2"
)

var SupabaseOpts struct {
	URL      string
	Key      string
	Email    string
	Password string

	StateTable      string
	KakaoTable      string
	TossTable       string
	SubscriberTable string
}

var URLFlag = mfcli.StringFlag("supabase-url", "Supabase project url", &SupabaseOpts.URL)
var KeyFlag = mfcli.StringFlag("supabase-key", "Supabase anon key", &SupabaseOpts.Key)
var EmailFlag = mfcli.StringFlagEnv("supabase-email", "email of the job's Supabase user", &SupabaseOpts.Email, []string{"SUPABASE_USER_EMAIL"})
var PasswordFlag = mfcli.StringFlagEnv("supabase-password", "password of the job's Supabase user", &SupabaseOpts.Password, []string{"SUPABASE_USER_PASSWORD"})
var StateTableFlag = mfcli.StringFlagEnv("state-table", "table holding the send state row", &SupabaseOpts.StateTable, []string{"STATE_TABLE_NAME"}, DefaultStateTable)
var KakaoTableFlag = mfcli.StringFlagEnv("kakao-table", "table holding kakao_last_send_no (defaults to the state table)", &SupabaseOpts.KakaoTable, []string{"TABLE_NAME_1"})
var TossTableFlag = mfcli.StringFlagEnv("toss-table", "table holding toss_last_send_key (defaults to the state table)", &SupabaseOpts.TossTable, []string{"TABLE_NAME_2"})
var SubscriberTableFlag = mfcli.StringFlagEnv("subscriber-table", "table holding subscriber phone numbers", &SupabaseOpts.SubscriberTable, []string{"TABLE_NAME_3"})

var SupabaseFlags = []cli.Flag{
	URLFlag,
	KeyFlag,
	EmailFlag,
	PasswordFlag,
	StateTableFlag,
	KakaoTableFlag,
	TossTableFlag,
	SubscriberTableFlag,
}
