package service

import (
	"context"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type twilioSMSService struct {
	client *twilio.RestClient
	from   string
}

func NewSMSService(accountSID, authToken, fromPhone string) SMSService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &twilioSMSService{client: client, from: fromPhone}
}

func (s *twilioSMSService) Send(_ context.Context, toPhone, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(s.from)
	params.SetBody(body)

	_, err := s.client.Api.CreateMessage(params)
	return err
}
