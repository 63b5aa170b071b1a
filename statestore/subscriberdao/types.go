package subscriberdao

type Subscriber struct {
	PhoneNumber string `dynamodbav:"phone_number" ddb:"hash"`
	CreatedAt   int64  `dynamodbav:"created_at,omitempty"`
}
