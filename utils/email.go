package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if config.Host == "" || config.Port == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}

func SendWelcomeEmail(email, name string) {
	go func() {
		subject := "Welcome!"
		body := fmt.Sprintf(`<h2>Welcome, %s!</h2>
<p>Thank you for creating your account. You can now:</p>
<ul>
<li>Browse wardrobes and storage units from every collection</li>
<li>Save your favourites to a wishlist</li>
<li>Your guest cart comes with you when you sign in</li>
</ul>
<p>Happy shopping!</p>`, strings.Split(name, " ")[0])
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", email, err)
		}
	}()
}

// SendPriceChangeEmail notifies a customer who has the product wishlisted
// that its price moved. Fired asynchronously on admin price updates.
func SendPriceChangeEmail(email, name, productName string, oldPrice, newPrice float64, currency string) {
	go func() {
		subject := fmt.Sprintf("Price update: %s", productName)
		body := fmt.Sprintf(`<h2>Price Update</h2>
<p>Hi %s,</p>
<p>The price of "%s" on your wishlist changed from %.2f %s to %.2f %s.</p>
<p>Visit the store to take another look.</p>`,
			strings.Split(name, " ")[0], productName, oldPrice, currency, newPrice, currency)
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send price change email to %s: %v", email, err)
		}
	}()
}

// SendCartClearedEmail tells a signed-in customer their cart was emptied.
func SendCartClearedEmail(email, name string) {
	go func() {
		subject := "Your cart has been cleared"
		body := fmt.Sprintf(`<h2>Cart Cleared</h2>
<p>Hi %s,</p>
<p>Your shopping cart has been cleared. If you didn't do this, please contact customer support.</p>`,
			strings.Split(name, " ")[0])
		if err := SendEmail(email, subject, body); err != nil {
			log.Printf("Failed to send cart cleared email to %s: %v", email, err)
		}
	}()
}
