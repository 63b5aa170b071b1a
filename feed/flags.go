package feed

import (
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	"github.com/urfave/cli/v2"
)

var FeedOpts struct {
	KakaoURL          string
	TossURL           string
	KakaoLinkTemplate string
	TossLinkTemplate  string
}

var KakaoURLFlag = mfcli.StringFlagEnv("kakao-url", "Kakao Bank posts API endpoint", &FeedOpts.KakaoURL, []string{"KAKAO_BANK_POSTS_API"})
var TossURLFlag = mfcli.StringFlagEnv("toss-url", "Toss Bank posts API endpoint", &FeedOpts.TossURL, []string{"TOSS_BANK_POSTS_API"})
var KakaoLinkTemplateFlag = mfcli.StringFlag("kakao-link-template", "link for a Kakao post; {id} is replaced by the post no", &FeedOpts.KakaoLinkTemplate, DefaultKakaoLinkTemplate)
var TossLinkTemplateFlag = mfcli.StringFlag("toss-link-template", "link for a Toss post; {id} is replaced by the post key", &FeedOpts.TossLinkTemplate, DefaultTossLinkTemplate)

var FeedFlags = []cli.Flag{
	KakaoURLFlag,
	TossURLFlag,
	KakaoLinkTemplateFlag,
	TossLinkTemplateFlag,
}
