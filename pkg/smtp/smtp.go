package smtp

import (
	"fmt"
	"time"

	"github.com/bcplughub/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// Client is a mail client for outbound invitation emails.
type Client struct {
	dialer *gomail.Dialer
}

func NewClient(dialer *gomail.Dialer) *Client {
	return &Client{dialer: dialer}
}

// SendInviteEmail sends a private invitation to one recipient. Delivery is
// best effort, failures are logged and swallowed.
func (c *Client) SendInviteEmail(to, functionName, organizerAlias, posterURL string) {
	msg := gomail.NewMessage()

	domain := viper.GetString("service.smtp.domain")
	messageID := generateMessageID(domain)

	msg.SetHeader("Message-ID", messageID)
	msg.SetHeader("Date", time.Now().Format(time.RFC1123Z))
	msg.SetHeader("From", viper.GetString("service.smtp.email"))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("You're invited: %s", functionName))
	msg.SetBody("text/plain", fmt.Sprintf("%s invited you to %s. Open the app to RSVP.", organizerAlias, functionName))
	if posterURL != "" {
		msg.AddAlternative("text/html", fmt.Sprintf(
			"<p><b>%s</b> invited you to <b>%s</b>.</p><p><img src=%q alt=\"invitation\"/></p>",
			organizerAlias, functionName, posterURL,
		))
	}
	if err := c.dialer.DialAndSend(msg); err != nil {
		logger.Log.Error(err)
		return
	}

	logger.Log.Infof("invite email sent to %s", to)
}

func generateMessageID(domain string) string {
	uniqueID := uuid.New().String()
	return fmt.Sprintf("<%s@%s>", uniqueID, domain)
}
