package statedao

// Record is the send state singleton. Markers are stored as strings regardless
// of the feed's native identifier type.
type Record struct {
	ID              string `dynamodbav:"id" ddb:"hash"`
	MessageTemplate string `dynamodbav:"message_template"`
	KakaoLastSendNo string `dynamodbav:"kakao_last_send_no,omitempty"`
	TossLastSendKey string `dynamodbav:"toss_last_send_key,omitempty"`
	UpdatedAt       int64  `dynamodbav:"updated_at,omitempty"`
}
