package dto

import "github.com/ridermi/rider-agent/pkg/validator"

type SendMessageRequest struct {
	Text string `json:"text"`
}

func (r *SendMessageRequest) Validate(v *validator.Validator) {
	v.Check(r.Text != "", "text", "must be provided")
}
