package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
	"github.com/vncsmyrnk/idolvote/internal/utils"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioSender struct {
	api     messageCreator
	from    string
	orgName string
}

func NewTwilioSender(accountSID, authToken, fromPhone, orgName string) ports.CodeSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: client.Api, from: fromPhone, orgName: orgName}
}

func (s *TwilioSender) Send(_ context.Context, identifier domain.Identifier, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(identifier.MobileNumber)
	params.SetFrom(s.from)
	params.SetBody(fmt.Sprintf("Your %s verification code is %s", s.orgName, code))

	if _, err := s.api.CreateMessage(params); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to send verification SMS to %s via Twilio", identifier.MobileNumber)
		return fmt.Errorf("failed to send sms via twilio: %w", err)
	}
	return nil
}
