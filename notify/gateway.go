package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"repairx/common"
)

// Gateway delivers one intent to the external SMS/email collaborator.
type Gateway interface {
	Send(intent Intent) error
}

var ActiveGateway Gateway = &HttpGateway{}

// HttpGateway posts intents to the notification service resolved from
// NOTIFY_GATEWAY_URL.
type HttpGateway struct {
	BaseURL string
}

func BootstrapGatewayFromEnv() error {
	gatewayURL := os.Getenv("NOTIFY_GATEWAY_URL")
	if gatewayURL == "" {
		return errors.New("environment variable NOTIFY_GATEWAY_URL is empty")
	}
	ActiveGateway = &HttpGateway{BaseURL: gatewayURL}
	return nil
}

func (g *HttpGateway) Send(intent Intent) error {
	if g.BaseURL == "" {
		return errors.New("notification gateway url is not configured")
	}
	reqBody, err := json.Marshal(&intent)
	if err != nil {
		return err
	}
	_, err = common.HttpInvokeJson(http.MethodPost, g.BaseURL+"/v1/notifications", http.Header{}, string(reqBody))
	return err
}
