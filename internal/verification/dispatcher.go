package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"quizhub/internal/domain"
)

const DefaultAPIURL = "https://api.emailjs.com/api/v1.0/email/send"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	otpPattern   = regexp.MustCompile(`^\d{6}$`)
)

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return &domain.ValidationError{Field: "email", Reason: "malformed address"}
	}
	return nil
}

// ValidateOTP checks for exactly six decimal digits.
func ValidateOTP(code string) error {
	if !otpPattern.MatchString(code) {
		return &domain.ValidationError{Field: "otp", Reason: "must be exactly 6 digits"}
	}
	return nil
}

// Config identifies the EmailJS service, template and public key used for
// delivery. All three must be present before any send is attempted.
type Config struct {
	APIURL     string
	ServiceID  string
	TemplateID string
	PublicKey  string
}

// Dispatcher delivers one-time verification codes through an
// EmailJS-compatible REST endpoint. Email and code shape are validated
// locally before any network call.
type Dispatcher struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

func NewDispatcher(cfg Config, log *zap.Logger) *Dispatcher {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return &Dispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// SendVerification validates inputs and configuration, then posts the
// verification message. Configuration gaps surface as DispatchError with
// Configuration set; transport and provider rejections as plain
// DispatchError.
func (d *Dispatcher) SendVerification(ctx context.Context, name, email, code string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidateOTP(code); err != nil {
		return err
	}
	if missing := d.missingConfig(); len(missing) > 0 {
		return &domain.DispatchError{
			Configuration: true,
			Message:       "email service is not configured, missing " + strings.Join(missing, ", "),
		}
	}

	if name == "" {
		name = "User"
	}
	payload := sendRequest{
		ServiceID:  d.cfg.ServiceID,
		TemplateID: d.cfg.TemplateID,
		UserID:     d.cfg.PublicKey,
		TemplateParams: map[string]string{
			"user_name": name,
			"to_name":   name,
			"otp_code":  code,
			// The provider template may resolve the recipient from any of
			// these, depending on how the service is configured.
			"user_email": email,
			"to_email":   email,
			"email":      email,
			"reply_to":   email,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &domain.DispatchError{Message: "encode verification request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return &domain.DispatchError{Message: "build verification request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return &domain.DispatchError{Message: "verification delivery failed", Err: err}
	}
	defer resp.Body.Close()

	text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode != http.StatusOK {
		d.log.Warn("verification dispatch rejected",
			zap.Int("status", resp.StatusCode), zap.String("body", string(text)))
		return &domain.DispatchError{
			Message: fmt.Sprintf("verification delivery failed with status %d", resp.StatusCode),
		}
	}
	// The provider answers a literal "OK" on success.
	if strings.TrimSpace(string(text)) != "OK" {
		return &domain.DispatchError{
			Message: fmt.Sprintf("unexpected delivery response %q", string(text)),
		}
	}
	d.log.Info("verification message sent", zap.String("email", email))
	return nil
}

func (d *Dispatcher) missingConfig() []string {
	var missing []string
	if d.cfg.ServiceID == "" {
		missing = append(missing, "service id")
	}
	if d.cfg.TemplateID == "" {
		missing = append(missing, "template id")
	}
	if d.cfg.PublicKey == "" {
		missing = append(missing, "public key")
	}
	return missing
}
