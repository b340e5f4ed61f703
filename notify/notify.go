package notify

import (
	"errors"
	"fmt"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"fenifisc-registro/models"
)

// Notifier covers every side-effect notification the API fires. All of
// them are best-effort: callers log failures and keep going.
type Notifier interface {
	NotifyAdminNewAthlete(athlete models.Athlete, categories []string) error
	NotifyAthleteStatus(email, name, status string) error
	NotifyAthleteStatusSMS(phone, name, status string) error
}

// Service sends mail over SMTP and, when configured, SMS through Twilio.
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	from         string
	adminEmails  []string

	twilio     *twilio.RestClient
	twilioFrom string
}

// NewService reads SMTP_* and TWILIO_* configuration from the
// environment. SMTP settings are required; Twilio is optional.
func NewService() (*Service, error) {
	s := &Service{
		smtpHost:     os.Getenv("SMTP_HOST"),
		smtpPort:     os.Getenv("SMTP_PORT"),
		smtpUser:     os.Getenv("SMTP_USER"),
		smtpPassword: os.Getenv("SMTP_PASSWORD"),
		from:         os.Getenv("SMTP_FROM"),
	}
	if s.smtpHost == "" || s.smtpPort == "" || s.from == "" {
		return nil, errors.New("SMTP_HOST, SMTP_PORT and SMTP_FROM must be set")
	}

	admins := os.Getenv("ADMIN_NOTIFY_EMAILS")
	if admins == "" {
		admins = "info@fenifisc.com"
	}
	for _, a := range strings.Split(admins, ",") {
		if a = strings.TrimSpace(a); a != "" {
			s.adminEmails = append(s.adminEmails, a)
		}
	}

	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	s.twilioFrom = os.Getenv("TWILIO_FROM_NUMBER")
	if sid != "" && token != "" && s.twilioFrom != "" {
		s.twilio = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: sid,
			Password: token,
		})
	}

	return s, nil
}

func (s *Service) sendMail(to []string, subject, html string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + strings.Join(to, ", ") + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" + html + "\r\n")

	return smtp.SendMail(s.smtpHost+":"+s.smtpPort, auth, s.from, to, msg)
}

func (s *Service) NotifyAdminNewAthlete(athlete models.Athlete, categories []string) error {
	subject := "Nuevo atleta inscrito en FENIFISC"
	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 24px;">
			<h2 style="color: #1e3a8a;">Nuevo atleta inscrito</h2>
			<p>Se ha registrado un nuevo atleta en FENIFISC:</p>
			<ul>
				<li><b>Nombre:</b> %s %s</li>
				<li><b>Email:</b> %s</li>
				<li><b>C&eacute;dula:</b> %s</li>
				<li><b>Categor&iacute;as:</b> %s</li>
				<li><b>Fecha de registro:</b> %s</li>
			</ul>
			<p>Revisa el panel de administraci&oacute;n para aprobar o rechazar la solicitud.</p>
			<footer style="font-size: 12px; color: #888;">&copy; %d FENIFISC</footer>
		</div>`,
		athlete.FirstName, athlete.LastName, athlete.Email, athlete.Cedula,
		strings.Join(categories, ", "), athlete.CreatedAt, time.Now().Year())

	return s.sendMail(s.adminEmails, subject, html)
}

func (s *Service) NotifyAthleteStatus(email, name, status string) error {
	var subject, html string
	switch status {
	case models.StatusApproved:
		subject = "¡Fuiste aprobado como atleta en FENIFISC!"
		html = fmt.Sprintf(`
			<div style="font-family: Arial, sans-serif; padding: 24px;">
				<h2 style="color: #1e3a8a;">&iexcl;Hola, %s!</h2>
				<p>Tu registro como atleta ha sido <b style="color: #16a34a;">aprobado</b> en el sistema FENIFISC.</p>
				<p>Ya puedes participar en las competencias y gestionar tu informaci&oacute;n.</p>
				<p>&iexcl;Bienvenido a la Federaci&oacute;n Nicarag&uuml;ense de F&iacute;sico Culturismo!</p>
				<footer style="font-size: 12px; color: #888;">&copy; %d FENIFISC &middot; info@fenifisc.com</footer>
			</div>`, name, time.Now().Year())
	case models.StatusRejected:
		subject = "Tu registro como atleta en FENIFISC ha sido rechazado"
		html = fmt.Sprintf(`
			<div style="font-family: Arial, sans-serif; padding: 24px;">
				<h2 style="color: #1e3a8a;">Hola, %s</h2>
				<p>Lamentamos informarte que tu registro como atleta en FENIFISC ha sido <b style="color: #dc2626;">rechazado</b>.</p>
				<p>Si tienes dudas o deseas m&aacute;s informaci&oacute;n, escr&iacute;benos a info@fenifisc.com.</p>
				<footer style="font-size: 12px; color: #888;">&copy; %d FENIFISC</footer>
			</div>`, name, time.Now().Year())
	default:
		return fmt.Errorf("no notification template for status %q", status)
	}

	return s.sendMail([]string{email}, subject, html)
}

func (s *Service) NotifyAthleteStatusSMS(phone, name, status string) error {
	if s.twilio == nil {
		logrus.Debug("twilio not configured, skipping SMS")
		return nil
	}

	var body string
	switch status {
	case models.StatusApproved:
		body = fmt.Sprintf("FENIFISC: %s, tu registro como atleta fue aprobado. ¡Bienvenido!", name)
	case models.StatusRejected:
		body = fmt.Sprintf("FENIFISC: %s, tu registro como atleta fue rechazado. Escríbenos a info@fenifisc.com.", name)
	default:
		return fmt.Errorf("no SMS template for status %q", status)
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.twilioFrom)
	params.SetBody(body)

	_, err := s.twilio.Api.CreateMessage(params)
	return err
}
